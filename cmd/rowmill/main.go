package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"rowmill/internal/config"
	"rowmill/internal/logging"
	"rowmill/internal/record"
	"rowmill/internal/script"
	"rowmill/internal/storage"
	"rowmill/internal/task"
	"rowmill/internal/telemetry"
)

func main() {
	specPath := flag.String("spec", "task.yml", "task spec YAML")
	confPath := flag.String("config", "", "runtime config YAML (optional)")
	flag.Parse()

	record.Register("ion", func() record.Codec { return record.IonCodec{} })
	record.Register("jsonl", func() record.Codec { return record.JSONLCodec{} })
	script.Register("js", func() script.Engine { return script.JSEngine{} })

	rt, err := config.LoadRuntime(*confPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Configure(logging.Options{Level: rt.Log.Level, JSON: rt.Log.JSON})

	spec, err := config.LoadSpec(*specPath)
	if err != nil {
		log.Fatalf("spec: %v", err)
	}

	if rt.MetricsPort > 0 {
		telemetry.Expose(rt.MetricsPort)
	}

	store, err := storage.NewStore(rt.WorkDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ft, err := task.New(spec, store, rt)
	if err != nil {
		log.Fatalf("task: %v", err)
	}
	out, err := ft.Run(ctx)
	if err != nil {
		log.Fatalf("task %s: %v", spec.Name, err)
	}
	logging.L().Info("done", "uri", out.URI, "records", out.Records)
}
