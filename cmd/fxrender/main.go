// Command fxrender applies one effect processor to a WAV file offline.
//
// Usage:
//
//	fxrender -effect delay -in dry.wav -out wet.wav
//	fxrender -effect flanger -set rate=2 -set depth=80 -in dry.wav -out wet.wav
//	fxrender -list
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"

	"github.com/mottysisam/vaist-forge/dsp/fx"
)

const blockFrames = 4096

// paramFlag collects repeatable -set id=value assignments.
type paramFlag []string

func (p *paramFlag) String() string {
	return strings.Join(*p, ",")
}

func (p *paramFlag) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("expected id=value, got %q", v)
	}

	*p = append(*p, v)
	return nil
}

func main() {
	var params paramFlag

	effect := flag.String("effect", "", "effect name (see -list)")
	in := flag.String("in", "", "input WAV file")
	out := flag.String("out", "", "output WAV file")
	list := flag.Bool("list", false, "list available effects")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Var(&params, "set", "set a parameter, id=value (repeatable)")
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if *list {
		for _, name := range fx.Names() {
			fmt.Println(name)
		}
		return
	}

	if *effect == "" || *in == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(log, *effect, *in, *out, params); err != nil {
		log.WithError(err).Fatal("render failed")
	}
}

func run(log *logrus.Logger, effectName, inPath, outPath string, params paramFlag) error {
	desc, ok := fx.ByName(effectName)
	if !ok {
		return fmt.Errorf("unknown effect %q", effectName)
	}

	inFile, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer inFile.Close()

	dec := wav.NewDecoder(inFile)
	if !dec.IsValidFile() {
		return fmt.Errorf("%s is not a valid WAV file", inPath)
	}

	sampleRate := float64(dec.SampleRate)
	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)

	log.WithFields(logrus.Fields{
		"effect":   effectName,
		"rate":     sampleRate,
		"channels": channels,
		"bits":     bitDepth,
	}).Info("rendering")

	proc, err := fx.New(desc, fx.WithMaxChannels(channels))
	if err != nil {
		return err
	}

	for _, assignment := range params {
		id, raw, _ := strings.Cut(assignment, "=")

		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("param %s: %w", assignment, err)
		}

		if err := proc.SetParameter(id, value); err != nil {
			return err
		}

		log.WithFields(logrus.Fields{"param": id, "value": value}).Debug("parameter set")
	}

	if err := proc.Prepare(sampleRate); err != nil {
		return err
	}

	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer outFile.Close()

	enc := wav.NewEncoder(outFile, int(sampleRate), bitDepth, channels, 1)

	if err := render(log, dec, enc, proc, channels, bitDepth, sampleRate); err != nil {
		return err
	}

	return enc.Close()
}

func render(log *logrus.Logger, dec *wav.Decoder, enc *wav.Encoder, proc *fx.Processor, channels, bitDepth int, sampleRate float64) error {
	scale := float64(int(1) << (bitDepth - 1))

	format := &audio.Format{NumChannels: channels, SampleRate: int(sampleRate)}
	inBuf := &audio.IntBuffer{Format: format, Data: make([]int, blockFrames*channels), SourceBitDepth: bitDepth}

	bufs := make([][]float64, channels)
	for i := range bufs {
		bufs[i] = make([]float64, blockFrames)
	}

	totalFrames := 0

	for {
		n, err := dec.PCMBuffer(inBuf)
		if err != nil {
			return err
		}

		if n == 0 {
			break
		}

		frames := n / channels
		for ch := 0; ch < channels; ch++ {
			for i := 0; i < frames; i++ {
				bufs[ch][i] = float64(inBuf.Data[i*channels+ch]) / scale
			}
		}

		if err := proc.Process(bufs, frames); err != nil {
			return err
		}

		for ch := 0; ch < channels; ch++ {
			for i := 0; i < frames; i++ {
				inBuf.Data[i*channels+ch] = int(math.Round(bufs[ch][i] * (scale - 1)))
			}
		}

		outBuf := &audio.IntBuffer{Format: format, Data: inBuf.Data[:n], SourceBitDepth: bitDepth}
		if err := enc.Write(outBuf); err != nil {
			return err
		}

		totalFrames += frames
	}

	log.WithFields(logrus.Fields{"frames": totalFrames}).Info("done")
	return nil
}
