package discord

import (
	"log"
	"time"
)

const slowStep = 2 * time.Second

func step(label string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		if d >= slowStep {
			log.Printf("[trace] SLOW %s = %s", label, d)
			return
		}
		log.Printf("[trace] %s = %s", label, d)
	}
}
