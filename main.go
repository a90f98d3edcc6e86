//go:build js
// +build js

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gopherjs/gopherjs/js"
	"golang.org/x/exp/slog"

	"github.com/simukka/drumpal/audio"
	"github.com/simukka/drumpal/audio/tone"
	"github.com/simukka/drumpal/kit"
	"github.com/simukka/drumpal/toy"
)

func main() {
	log := slog.New(tone.NewConsoleHandler(slog.LevelInfo))

	host, err := tone.New(log)
	if err != nil {
		log.Error("cannot start audio", "err", err)
		return
	}
	engine := audio.NewEngine(host, audio.WithLogger(log))
	dp := toy.New(engine, toy.WithLogger(log))

	doc := js.Global.Get("document")
	ui := &page{doc: doc, toy: dp, log: log}
	ui.buildPads()
	ui.bindControls()
	dp.OnHit(func(padID string) { ui.showHit(padID) })

	// Audio can only start after a user gesture.
	doc.Call("addEventListener", "pointerdown", func() {
		go engine.Initialize(context.Background())
	})

	// Keydown handler
	doc.Call("addEventListener", "keydown", func(event *js.Object) {
		if event.Get("repeat").Bool() {
			return
		}
		key := event.Get("key").String()
		go func() {
			dp.HandleKey(key)
			ui.refresh()
		}()
		if _, ok := toy.KeyToPad(key); ok {
			event.Call("preventDefault")
		}
	})

	// Expose the toy to JavaScript
	js.Global.Set("DrumPal", map[string]interface{}{
		"trigger": func(padID string) {
			go dp.TriggerPad(padID)
		},
		"design": func(padID, prompt string) {
			go ui.design(padID, prompt, dp.Editing())
		},
		"setToySpeaker": func(on bool) { dp.SetToySpeaker(on) },
		"setWellLoved":  func(on bool) { dp.SetWellLoved(on) },
		"setBattery":    func(level float64) { dp.SetBattery(level); ui.refresh() },
		"battery":       func() float64 { return dp.Battery() },
		"setBPM":        func(bpm float64) { dp.SetBPM(bpm) },
		"record":        func() { dp.Recorder().Record(); ui.refresh() },
		"play":          func() { dp.Play(); ui.refresh() },
		"stop":          func() { dp.Recorder().Stop(); ui.refresh() },
		"metronome":     func() bool { return dp.Metronome().Toggle() },
		"editing":       func() string { return dp.Editing().String() },
		"setEditing": func(slot string) bool {
			s, ok := toy.ParseSlot(slot)
			if ok {
				dp.SetEditing(s)
				ui.refresh()
			}
			return ok
		},
		"setMorph": func(padID string, v float64) bool {
			ok := dp.SetMorph(padID, v)
			ui.refresh()
			return ok
		},
		"exportSequence": func() string {
			seq, ok := dp.Recorder().Export(dp.BPM())
			if !ok {
				return ""
			}
			b, _ := json.Marshal(seq)
			return string(b)
		},
		"importSequence": func(data string) string {
			seq, err := toy.ParseSequence([]byte(data))
			if err == nil {
				err = dp.Recorder().Import(seq)
			}
			if err != nil {
				return err.Error()
			}
			return ""
		},
		"share": func(color string, transparent bool) string {
			hash, err := kit.Encode(dp.Pads(), kit.Shell{Color: color, Transparent: transparent})
			if err != nil {
				log.Error("share failed", "err", err)
				return ""
			}
			return hash
		},
	})

	// Release audio nodes when the page goes away
	js.Global.Call("addEventListener", "beforeunload", func() {
		dp.Close()
		engine.Shutdown()
	})

	if hash := js.Global.Get("location").Get("hash").String(); len(hash) > 1 {
		if shared, err := kit.Decode(hash[1:]); err == nil {
			dp.SetPads(shared.Pads)
			ui.buildPads()
			for _, p := range shared.Pads {
				if p.Prompt != "" && p.Sound == nil {
					go ui.design(p.ID, p.Prompt, toy.SlotA)
				}
			}
		} else {
			log.Warn("failed to parse sound kit from share link", "err", err)
		}
	}

	select {}
}

// page is the DOM side of the toy.
type page struct {
	doc *js.Object
	toy *toy.Toy
	log *audio.Logger
}

func (p *page) byID(id string) *js.Object {
	return p.doc.Call("getElementById", id)
}

func (p *page) buildPads() {
	grid := p.byID("pads")
	grid.Set("innerHTML", "")
	pads := p.toy.Pads()
	for _, id := range kit.Layout {
		pad, ok := kit.Find(pads, id)
		if !ok {
			grid.Call("appendChild", p.doc.Call("createElement", "div"))
			continue
		}
		btn := p.doc.Call("createElement", "button")
		btn.Set("className", "pad")
		btn.Set("id", "pad-"+pad.ID)
		btn.Set("textContent", pad.Name)
		btn.Get("style").Set("background", kit.ColorHex(pad.Color))
		padID := pad.ID
		btn.Call("addEventListener", "pointerdown", func() {
			go p.toy.TriggerPad(padID)
		})
		grid.Call("appendChild", btn)
	}
}

func (p *page) bindControls() {
	p.byID("toy").Call("addEventListener", "change", func(event *js.Object) {
		p.toy.SetToySpeaker(event.Get("target").Get("checked").Bool())
	})
	p.byID("loved").Call("addEventListener", "change", func(event *js.Object) {
		p.toy.SetWellLoved(event.Get("target").Get("checked").Bool())
	})
	for id, f := range map[string]func(){
		"rec":   func() { p.toy.Recorder().Record() },
		"play":  func() { p.toy.Play() },
		"stop":  func() { p.toy.Recorder().Stop() },
		"metro": func() { p.toy.Metronome().Toggle() },
	} {
		f := f
		p.byID(id).Call("addEventListener", "click", func() {
			f()
			p.refresh()
		})
	}
	p.byID("edit").Call("addEventListener", "click", func() {
		p.toy.ToggleEditing()
		p.refresh()
	})
	// The slider morphs the last pad played.
	p.byID("mix").Call("addEventListener", "input", func(event *js.Object) {
		p.toy.SetMorph(p.toy.LastPad(), event.Get("target").Get("value").Float())
	})
}

// showHit writes the pad to the LCD.
func (p *page) showHit(padID string) {
	name := padID
	if pad, ok := kit.Find(p.toy.Pads(), padID); ok {
		name = pad.Name
	}
	p.setLCD(name)
}

func (p *page) refresh() {
	p.setLCD(p.toy.LastPad())
	p.byID("toy").Set("checked", p.toy.ToySpeaker())
	p.byID("loved").Set("checked", p.toy.WellLoved())
	p.byID("edit").Set("textContent", "EDITING SOUND: "+p.toy.Editing().String())
	if pad, ok := kit.Find(p.toy.Pads(), p.toy.LastPad()); ok {
		p.byID("mix").Set("value", pad.Morph)
	}
}

func (p *page) setLCD(top string) {
	if top == "" {
		top = "DRUM-PAL"
	}
	status := fmt.Sprintf("BAT %3.0f%%  %s", p.toy.Battery(), p.toy.Recorder().State())
	if p.toy.LowBattery() {
		status = "LOW BATT  " + p.toy.Recorder().State().String()
	}
	lcd := p.byID("lcd")
	lcd.Set("textContent", top+"\n"+status)
	lcd.Get("classList").Call("toggle", "flicker", p.toy.WellLoved() && p.toy.LowBattery())
}

// design asks the server for a sound and stores it in one of the pad's
// slots.
func (p *page) design(padID, prompt string, slot toy.Slot) {
	p.setLCD("THINKING")
	body, _ := json.Marshal(map[string]string{"prompt": prompt})
	resp, err := http.Post("/api/generate-sound", "application/json", bytes.NewReader(body))
	if err != nil {
		p.log.Error("generate sound", "err", err)
		p.setLCD("ERROR")
		return
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		p.log.Error("generate sound", "status", resp.StatusCode, "err", err)
		p.setLCD("ERROR")
		return
	}
	sound, err := audio.ParseDescriptor(data)
	if err != nil {
		p.log.Error("generate sound", "err", err)
		p.setLCD("ERROR")
		return
	}

	if !p.toy.SetSound(padID, slot, prompt, sound) {
		return
	}
	name := padID
	if pad, ok := kit.Find(p.toy.Pads(), padID); ok {
		name = pad.Name
	}
	p.setLCD(name + " " + slot.String() + " READY")
}
