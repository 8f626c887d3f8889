// Command usbridged opens a USB audio/MIDI bridge device, activates the
// engine against the in-process reference collaborator, and serves a
// status/control API while the bridge runs: flag-configured, gin API
// server started in a goroutine, SIGINT/SIGTERM triggers a graceful
// shutdown.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"usbridge/internal/collab"
	"usbridge/internal/config"
	"usbridge/internal/device"
	"usbridge/internal/engine"
	"usbridge/internal/engine/resample"
	"usbridge/internal/statusapi"
)

func main() {
	bus := flag.Int("bus", 0, "USB bus number of the target device")
	address := flag.Int("address", 0, "USB device address on the bus")
	blocks := flag.Int("blocks", 0, "blocks per transfer (0 = config value)")
	statusAddr := flag.String("status-addr", "", "status API listen address (empty = config default)")
	ringSeconds := flag.Float64("ring-seconds", 0.5, "reference audio ring capacity, in seconds at 48kHz")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("usbridged: load config: %v", err)
	}
	if *bus != 0 {
		cfg.Bus = *bus
	}
	if *address != 0 {
		cfg.Address = *address
	}
	if *blocks != 0 {
		cfg.BlocksPerTransfer = *blocks
	}
	if *statusAddr != "" {
		cfg.StatusAddr = *statusAddr
	}

	handle, desc, err := device.OpenAt(cfg.Bus, cfg.Address)
	if err != nil {
		log.Fatalf("usbridged: open device at bus %d address %d: %v", cfg.Bus, cfg.Address, err)
	}
	log.Printf("usbridged: opened %s (in=%d out=%d)", desc.Name, desc.Inputs, desc.Outputs)

	transport := device.NewTransport(handle)
	resampler := resample.New(1)

	eng, err := engine.Init(transport, desc, cfg.BlocksPerTransfer, resampler)
	if err != nil {
		log.Fatalf("usbridged: engine init: %v", err)
	}

	ringCapacity := int(*ringSeconds * 48000)
	clock := collab.NewSystemClock()
	io := engine.IOBuffers{
		O2PAudio: collab.NewAudioRing(ringCapacity * desc.Outputs),
		P2OAudio: collab.NewAudioRing(ringCapacity * desc.Inputs),
		O2PMIDI: collab.NewMIDIRing(256),
		P2OMIDI: collab.NewMIDIRing(256),
		Clock: clock,
	}
	dll := collab.NewSimpleDLL(clock)

	if err := eng.ActivateWithDLL(io, dll); err != nil {
		log.Fatalf("usbridged: activate: %v", err)
	}
	eng.SetStatus(engine.StatusRun)
	eng.SetP2OAudioEnabled(true)

	api := statusapi.New(eng)
	go func() {
		log.Printf("usbridged: status API listening on %s", cfg.StatusAddr)
		if err := api.ListenAndServe(cfg.StatusAddr); err != nil {
			log.Printf("usbridged: status API stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("usbridged: shutting down")
	eng.Stop()
	eng.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := api.Shutdown(ctx); err != nil {
		log.Printf("usbridged: status API shutdown: %v", err)
	}

	if err := eng.Destroy(); err != nil {
		log.Printf("usbridged: destroy: %v", err)
	}
}
