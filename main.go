package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"

	"github.com/vmware-tanzu-private/kartographer/config"
	"github.com/vmware-tanzu-private/kartographer/emitter"
	"github.com/vmware-tanzu-private/kartographer/ingestion"
	"github.com/vmware-tanzu-private/kartographer/inventory"
	"github.com/vmware-tanzu-private/kartographer/mermaid"
	"github.com/vmware-tanzu-private/kartographer/metrics"
	"github.com/vmware-tanzu-private/kartographer/publish"
	"github.com/vmware-tanzu-private/kartographer/relations"
)

func main() {

	configFile := flag.String("c", "", "Path to kartographer config file")
	manifestDir := flag.String("d", "", "Directory tree of Kubernetes manifests, overrides the config file")
	outputFile := flag.String("o", "", "File to write the diagram to, stdout when empty")
	watch := flag.Bool("w", false, "Keep running and re-render when the manifest tree changes")
	flag.Parse()

	kgConfig := config.Config{}
	if *configFile != "" {
		kgConfig = config.ReadConfig(*configFile)
	}
	if *manifestDir != "" {
		kgConfig.ManifestDir = *manifestDir
	}
	if *outputFile != "" {
		kgConfig.OutputFile = *outputFile
	}
	if *watch {
		kgConfig.Watch = true
	}
	// allow the manifest dir as a bare positional argument
	if kgConfig.ManifestDir == "" && flag.NArg() > 0 {
		kgConfig.ManifestDir = flag.Arg(0)
	}
	if kgConfig.ManifestDir == "" {
		log.Fatalln("no manifest directory given, use -d or a config file")
	}

	if err := run(kgConfig); err != nil {
		if err == ingestion.ErrNoDocuments {
			log.Fatalln("no manifests found under", kgConfig.ManifestDir)
		}
		log.Fatalln("render failed:", err)
	}

	if !kgConfig.Watch {
		return
	}

	// metrics only make sense while we stay up between renders
	if err := metrics.Metrics(kgConfig); err != nil {
		glog.Errorf("metrics not started: %s", err)
	}

	// watch for changes to the manifest tree and re-render the full
	// diagram whenever something moves
	fileChange := make(chan bool)
	tw := config.TreeWatcher{}
	tw.New(fileChange, kgConfig.ManifestDir)
	go func() {
		for range fileChange {
			log.Println("Manifest tree changed, re-rendering")
			if err := run(kgConfig); err != nil {
				glog.Errorf("re-render failed: %s", err)
			}
		}
	}()

	// create channel to watch for SIGNALs to exit
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan

	log.Println("Shutdown signal received, exiting.")
}

// run executes one full pipeline pass: load, index, extract, render,
// deliver.
func run(cfg config.Config) error {
	docs, err := ingestion.ReadManifests(cfg.ManifestDir)
	if err != nil {
		return err
	}

	ix := inventory.New(docs)
	edges := relations.Extract(ix)
	for _, e := range edges {
		metrics.EdgeCount.WithLabelValues(e.Label).Inc()
	}
	glog.Infof("indexed %d resources, extracted %d edges", ix.Len(), len(edges))

	diagram := []byte(mermaid.Render(ix, edges))
	metrics.DiagramsRendered.Inc()

	if cfg.OutputFile != "" {
		if err := ioutil.WriteFile(cfg.OutputFile, diagram, 0644); err != nil {
			return err
		}
	} else {
		fmt.Print(string(diagram))
	}

	if cfg.RemoteEndpoint != "" {
		if err := emitter.EmitDiagram(diagram, cfg.RemoteEndpoint); err != nil {
			glog.Errorf("emit to %s failed: %s", cfg.RemoteEndpoint, err)
		}
	}
	if cfg.Publish.Provider != "" {
		if err := publish.New(cfg.Publish).Put(diagram); err != nil {
			glog.Errorf("publish failed: %s", err)
		}
	}

	return nil
}
