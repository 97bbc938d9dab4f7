//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/mottysisam/vaist-forge/dsp/fx"
	"github.com/mottysisam/vaist-forge/internal/hostmem"
	"github.com/mottysisam/vaist-forge/measure/response"
)

const (
	maxChannels = 2
	maxFrames   = 8192
)

var (
	proc   *fx.Processor
	mem    *hostmem.Memory
	chans  [][]float64
	funcs  []js.Func
	sample float64
)

func main() {
	api := js.Global().Get("Object").New()

	api.Set("effects", export(func(_ []js.Value) any {
		names := fx.Names()
		arr := js.Global().Get("Array").New(len(names))
		for i, n := range names {
			arr.SetIndex(i, n)
		}
		return arr
	}))

	api.Set("init", export(func(args []js.Value) any {
		if len(args) < 1 {
			return "init: effect name required"
		}

		desc, ok := fx.ByName(args[0].String())
		if !ok {
			return "init: unknown effect: " + args[0].String()
		}

		p, err := fx.New(desc, fx.WithMaxChannels(maxChannels))
		if err != nil {
			return err.Error()
		}

		proc = p

		sample = 48000
		if len(args) > 1 {
			sample = args[1].Float()
		}

		m, err := hostmem.New(maxFrames * maxChannels)
		if err != nil {
			return err.Error()
		}

		mem = m
		chans = make([][]float64, maxChannels)
		for i := range chans {
			chans[i] = make([]float64, maxFrames)
		}

		return js.Null()
	}))

	api.Set("prepare", export(func(args []js.Value) any {
		if proc == nil {
			return "prepare: not initialized"
		}

		rate := sample
		if len(args) > 0 {
			rate = args[0].Float()
		}

		if err := proc.Prepare(rate); err != nil {
			return err.Error()
		}

		sample = rate
		return js.Null()
	}))

	api.Set("reset", export(func(_ []js.Value) any {
		if proc != nil {
			proc.Reset()
		}
		return js.Null()
	}))

	api.Set("destroy", export(func(_ []js.Value) any {
		if proc != nil {
			proc.Destroy()
		}
		return js.Null()
	}))

	api.Set("setParam", export(func(args []js.Value) any {
		if proc == nil || len(args) < 2 {
			return "setParam: needs id and value"
		}

		if err := proc.SetParameter(args[0].String(), args[1].Float()); err != nil {
			return err.Error()
		}

		return js.Null()
	}))

	api.Set("getParam", export(func(args []js.Value) any {
		if proc == nil || len(args) < 1 {
			return js.Null()
		}

		v, err := proc.Parameter(args[0].String())
		if err != nil {
			return js.Null()
		}

		return v
	}))

	// process(samples Float32Array, frames, channels) processes planar audio
	// in place and returns the processed Float32Array.
	api.Set("process", export(func(args []js.Value) any {
		if proc == nil || len(args) < 3 {
			return "process: needs samples, frames, channels"
		}

		input := args[0]
		frames := args[1].Int()
		channels := args[2].Int()

		region, err := mem.Region(0, frames, channels)
		if err != nil {
			return err.Error()
		}

		raw := mem.Raw()
		for i := 0; i < frames*channels; i++ {
			raw[i] = float32(input.Index(i).Float())
		}

		bufs := chans[:channels]
		if err := region.CopyOut(bufs); err != nil {
			return err.Error()
		}

		if err := proc.Process(bufs, frames); err != nil {
			return err.Error()
		}

		if err := region.CopyIn(bufs); err != nil {
			return err.Error()
		}

		out := js.Global().Get("Float32Array").New(frames * channels)
		for i := 0; i < frames*channels; i++ {
			out.SetIndex(i, raw[i])
		}

		return out
	}))

	api.Set("saveState", export(func(_ []js.Value) any {
		if proc == nil {
			return js.Global().Get("Uint8Array").New(0)
		}

		blob := proc.SaveState()
		arr := js.Global().Get("Uint8Array").New(len(blob))
		js.CopyBytesToJS(arr, blob)

		return arr
	}))

	api.Set("loadState", export(func(args []js.Value) any {
		if proc == nil || len(args) < 1 {
			return 0
		}

		src := args[0]
		blob := make([]byte, src.Length())
		js.CopyBytesToGo(blob, src)

		return proc.LoadState(blob)
	}))

	api.Set("responseCurve", export(func(args []js.Value) any {
		if proc == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}

		input := args[0]
		freqs := make([]float64, input.Length())
		for i := range freqs {
			freqs[i] = input.Index(i).Float()
		}

		res, err := response.Measure(proc, response.Config{SampleRate: sample})
		if err != nil {
			return err.Error()
		}

		curve := res.Curve(freqs)
		arr := js.Global().Get("Float32Array").New(len(curve))
		for i, v := range curve {
			arr.SetIndex(i, v)
		}

		return arr
	}))

	js.Global().Set("FXForge", api)
	select {}
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
