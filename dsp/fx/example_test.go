package fx_test

import (
	"fmt"
	"log"

	"github.com/mottysisam/vaist-forge/dsp/fx"
)

func ExampleProcessor() {
	desc, _ := fx.ByName("delay")

	p, err := fx.New(desc)
	if err != nil {
		log.Fatal(err)
	}

	if err := p.Prepare(48000); err != nil {
		log.Fatal(err)
	}

	// 10 ms delay, no feedback, fully wet.
	_ = p.SetParameter("time", 0.01)
	_ = p.SetParameter("feedback", 0)
	_ = p.SetParameter("mix", 1)
	p.Reset()

	buf := make([]float64, 1024)
	buf[0] = 1

	if err := p.Process([][]float64{buf}, len(buf)); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("echo at 480: %.2f\n", buf[480])
	// Output: echo at 480: 1.00
}
