// Command contractgen writes the typed API client and its YAML manifest from
// the site's route tree. Handlers are never invoked, so no backing services
// are needed.
//
//	go run ./cmd/contractgen -out client
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"

	"github.com/dmitrymomot/newsdesk"
	"github.com/dmitrymomot/newsdesk/internal/cms"
	"github.com/dmitrymomot/newsdesk/pkg/contract"
	"github.com/dmitrymomot/newsdesk/pkg/logger"
)

const command = "go run ./cmd/contractgen"

func main() {
	out := flag.String("out", "client", "directory for client_gen.go and contracts.yaml")
	pkg := flag.String("package", "client", "package name of the generated client")
	flag.Parse()

	log := logger.New()
	if err := run(*out, *pkg); err != nil {
		log.Error("contract generation failed", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("contracts written", slog.String("dir", *out))
}

func run(dir, pkg string) error {
	eps := endpoints(siteDescriptors())

	var src, manifest bytes.Buffer
	if err := contract.Generate(&src, contract.Options{Package: pkg, Command: command}, eps); err != nil {
		return err
	}
	if err := contract.Manifest(&manifest, eps); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "client_gen.go"), src.Bytes(), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "contracts.yaml"), manifest.Bytes(), 0o644)
}

func siteDescriptors() []newsdesk.Descriptor {
	app := newsdesk.New(newsdesk.WithRoutes(cms.NewHandlers(cms.Deps{}).Routes))
	return app.Tree().Descriptors()
}

var emptyType = reflect.TypeFor[newsdesk.Empty]()

func endpoints(descs []newsdesk.Descriptor) []contract.Endpoint {
	eps := make([]contract.Endpoint, 0, len(descs))
	for _, d := range descs {
		ep := contract.Endpoint{
			Input:      d.Input,
			Query:      d.Query,
			Name:       d.Name,
			Method:     d.Method,
			Path:       d.Path,
			Summary:    d.Summary,
			PathParams: d.PathParams,
			Stages:     d.Stages,
			Status:     d.Status,
			Upload:     d.UploadField,
		}
		if d.OutputType != emptyType {
			ep.Output = d.OutputType
		}
		eps = append(eps, ep)
	}
	return eps
}
