// objconv converts Wavefront OBJ models to Blockbench geometry JSON.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Faultbox/objbench/internal/batch"
	"github.com/Faultbox/objbench/internal/config"
	"github.com/Faultbox/objbench/internal/logger"
	"github.com/Faultbox/objbench/internal/service"
	"github.com/Faultbox/objbench/pkg/bedrock"
	"github.com/Faultbox/objbench/pkg/obj"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "convert", "c":
		cmdConvert(args)
	case "inspect", "i":
		cmdInspect(args)
	case "batch", "b":
		cmdBatch(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objconv - OBJ to Blockbench geometry converter

Usage:
  objconv <command> [options]

Commands:
  convert <file.obj>        Convert one model (-o out.json, -name model, -config FILE)
  inspect <file>            Show mesh stats for .obj or a summary of a .json model
  batch <files...>          Convert many models (-workers N, -out DIR, -manifest FILE)
  config                    Write the default config (-o path)

Examples:
  objconv convert chair.obj
  objconv convert -o - -name hat model.obj
  objconv inspect chair.json
  objconv batch -workers 8 -out ./json models/*.obj`)
}

// loadConfig reads the config file and applies the shared parser flags.
// An empty path uses ./objbench.yaml or the user config dir.
func loadConfig(path string, strict, validateFaces bool) *config.Config {
	cfg, err := config.LoadPath(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if strict {
		cfg.Parser.Mode = obj.Strict.String()
	}
	if validateFaces {
		cfg.Parser.ValidateFaces = true
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, cfg.Logging.JSON)
	return cfg
}

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	output := fs.String("o", "", "Output path ('-' for stdout, default <name>.json next to input)")
	name := fs.String("name", "", "Model name (default: file name)")
	strict := fs.Bool("strict", false, "Reject malformed records")
	faces := fs.Bool("validate-faces", false, "Reject degenerate faces")
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objconv convert [options] <file.obj>")
		os.Exit(1)
	}
	input := fs.Arg(0)

	cfg := loadConfig(*configPath, *strict, *faces)
	defer logger.Sync()

	data, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	svc := service.New(cfg, nil, logger.Named("convert"))
	res, err := svc.Convert(service.Upload{FileName: filepath.Base(input), Data: data, ModelName: *name})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s (%v)\n", service.Message(err), err)
		os.Exit(1)
	}

	if *output == "-" {
		os.Stdout.Write(res.Content)
		fmt.Println()
		return
	}

	path := *output
	if path == "" {
		path = filepath.Join(filepath.Dir(input), res.FileName)
	}
	if err := os.WriteFile(path, res.Content, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s -> %s (%s, %v)\n", input, path, service.FormatSize(int64(len(res.Content))), res.Duration.Round(time.Microsecond))
}

func cmdInspect(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objconv inspect <file.obj|file.json>")
		os.Exit(1)
	}
	path := args[0]

	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = inspectDocument(path)
	} else {
		err = inspectMesh(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func inspectMesh(path string) error {
	mesh, err := obj.ParseFile(path, obj.Options{})
	if err != nil {
		return err
	}

	fmt.Printf("File:       %s\n", path)
	fmt.Printf("Vertices:   %d\n", mesh.VertexCount())
	fmt.Printf("TexCoords:  %d\n", len(mesh.TexCoords))
	fmt.Printf("Normals:    %d\n", len(mesh.Normals))
	fmt.Printf("Faces:      %d\n", mesh.FaceCount())

	if lo, hi, ok := mesh.UVBounds(); ok {
		span := hi.Sub(lo)
		fmt.Printf("UV range:   (%g, %g) .. (%g, %g), span %g x %g\n", lo.X, lo.Y, hi.X, hi.Y, span.X, span.Y)
	}

	box, err := bedrock.ComputeBounds(mesh.Vertices)
	if err != nil {
		return err
	}
	ext := box.Extent()
	fmt.Printf("Bounds:     (%g, %g, %g) .. (%g, %g, %g)\n", box.Min.X, box.Min.Y, box.Min.Z, box.Max.X, box.Max.Y, box.Max.Z)
	fmt.Printf("Extent:     %g x %g x %g\n", ext.X, ext.Y, ext.Z)

	if !box.Min.IsFinite() || !box.Max.IsFinite() || !ext.IsFinite() {
		fmt.Println("Cube:       (bounds not finite)")
		return nil
	}
	fit := bedrock.FitBox(box)
	fmt.Printf("Scale:      %g\n", fit.Scale)
	fmt.Printf("Cube:       origin (%g, %g, %g) size %v\n", fit.Min.X, fit.Min.Y, fit.Min.Z, fit.Size)
	return nil
}

func inspectDocument(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	doc, err := bedrock.Unmarshal(data)
	if err != nil {
		return err
	}

	g := doc.Geometry
	fmt.Printf("Format:     %s\n", doc.FormatVersion)
	fmt.Printf("Geometry:   %s\n", doc.Key())
	fmt.Printf("Texture:    %dx%d\n", g.TextureWidth, g.TextureHeight)
	fmt.Printf("Visible:    %dx%d offset %v\n", g.VisibleBoundsWidth, g.VisibleBoundsHeight, g.VisibleBoundsOffset)
	fmt.Println("Bones:")
	for _, b := range g.Bones {
		switch b := b.(type) {
		case *bedrock.RootBone:
			fmt.Printf("  %-16s pivot %v\n", b.Name, b.Pivot)
		case *bedrock.ModelBone:
			fmt.Printf("  %-16s parent %s, %d cube(s)\n", b.Name, b.Parent, len(b.Cubes))
			for _, c := range b.Cubes {
				fmt.Printf("    origin %v size %v uv %v\n", c.Origin, c.Size, c.UV)
			}
		}
	}
	return nil
}

func cmdBatch(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	workers := fs.Int("workers", 0, "Worker count (default from config)")
	outDir := fs.String("out", "", "Output directory (default: next to each input)")
	manifest := fs.String("manifest", "", "Write a JSON manifest of results")
	strict := fs.Bool("strict", false, "Reject malformed records")
	faces := fs.Bool("validate-faces", false, "Reject degenerate faces")
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objconv batch [options] <files...>")
		os.Exit(1)
	}

	cfg := loadConfig(*configPath, *strict, *faces)
	defer logger.Sync()

	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	svc := service.New(cfg, nil, logger.Named("service"))
	start := time.Now()
	results := batch.Run(svc, batch.Config{
		OutputDir: *outDir,
		Workers:   cfg.Batch.Workers,
		Progress:  2 * time.Second,
	}, fs.Args(), logger.Named("batch"))

	ok, failed := batch.Summary(results)
	logger.Sugar.Infof("converted %d file(s), %d failed in %v", ok, failed, time.Since(start).Round(time.Millisecond))

	if *manifest != "" {
		if err := batch.WriteManifest(*manifest, results); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if failed > 0 {
		logger.Sync()
		os.Exit(2)
	}
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	output := fs.String("o", "", "Output path (default: user config directory)")
	fs.Parse(args)

	cfg := config.Default()
	var err error
	if *output == "" {
		err = cfg.Save()
		*output = filepath.Join(config.ConfigDir(), "config.yaml")
	} else {
		err = cfg.SaveTo(*output)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *output)
}
