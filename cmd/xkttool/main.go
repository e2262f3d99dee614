// xkttool is a CLI utility for inspecting, loading and re-encoding XKT models.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/xktkit/internal/assets"
	"github.com/Faultbox/xktkit/internal/config"
	"github.com/Faultbox/xktkit/internal/logger"
	"github.com/Faultbox/xktkit/pkg/loader"
	"github.com/Faultbox/xktkit/pkg/metadata"
	"github.com/Faultbox/xktkit/pkg/scene"
	"github.com/Faultbox/xktkit/pkg/xkt"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch command {
	case "info":
		err = cmdInfo(ctx, args)
	case "sections", "ls":
		err = cmdSections(ctx, args)
	case "load":
		err = cmdLoad(ctx, args)
	case "upgrade":
		err = cmdUpgrade(ctx, args)
	case "versions":
		cmdVersions()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

const usage = `xkttool - XKT model utility

Usage:
  xkttool <command> [options] <args>

Commands:
  info <src>                          Show version, framing and element count
  sections <src>                      Show per-field element sizes
  load [-metadata file] <src>         Load into an in-memory scene and print stats
  upgrade [-version N] [-uncompressed] <src> <out>
                                      Re-encode to another container version
  versions                            List supported versions

Sources are file paths or http(s) URLs.

Common options:
  -config file   -debug   -globalize   -exclude-unclassified
  -workers N     -force-batch never|always|threshold

Examples:
  xkttool info tower.xkt
  xkttool load -metadata tower.json -exclude-unclassified tower.xkt
  xkttool upgrade -version 12 old.xkt new.xkt`

// Per-command usage lines.
const (
	infoUsage     = "Usage: xkttool info <src>"
	sectionsUsage = "Usage: xkttool sections <src>"
	loadUsage     = "Usage: xkttool load [options] [-metadata file] <src>"
	upgradeUsage  = "Usage: xkttool upgrade [options] [-version N] [-uncompressed] <src> <out>"
)

func printUsage() {
	fmt.Println(usage)
}

// env is what every command needs after flag parsing.
type env struct {
	cfg    *config.Config
	assets *assets.Manager
}

// setup parses args with the shared flags, loads config and initializes logging.
func setup(fs *flag.FlagSet, args []string) (*env, error) {
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	web := assets.NewHTTPSource(cfg.Source.BaseURL, cfg.Source.Timeout)
	web.UserAgent = cfg.Source.UserAgent
	return &env{
		cfg:    cfg,
		assets: assets.NewManager(assets.FileSource{}, web, cfg.Source.CacheEntries),
	}, nil
}

func (e *env) read(ctx context.Context, src string) ([]byte, error) {
	data, err := e.assets.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src, err)
	}
	logger.Debug("source read", zap.String("src", src), zap.Int("bytes", len(data)))
	return data, nil
}

func cmdInfo(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	e, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, infoUsage)
		os.Exit(1)
	}

	buf, err := e.read(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	header, err := xkt.ReadHeader(buf)
	if err != nil {
		return err
	}
	layout, ok := xkt.LookupLayout(header.Version)
	if !ok {
		return &xkt.UnsupportedVersionError{Version: header.Version, Supported: xkt.Versions()}
	}
	m, err := xkt.Decode(buf, xkt.DecodeOptions{Workers: e.cfg.Loader.Workers})
	if err != nil {
		return err
	}

	compressed := layout.Compressed || (layout.OptionalCompression && header.Compressed)
	fmt.Printf("Source:      %s\n", fs.Arg(0))
	fmt.Printf("Size:        %.2f KB\n", float64(len(buf))/1024)
	fmt.Printf("Version:     %d\n", header.Version)
	fmt.Printf("Framing:     %s\n", layout.Framing)
	fmt.Printf("Compressed:  %v\n", compressed)
	fmt.Printf("Elements:    %d\n", len(layout.Fields))
	fmt.Println()
	fmt.Printf("Tiles:       %d\n", m.NumTiles())
	fmt.Printf("Entities:    %d\n", m.NumEntities())
	fmt.Printf("Meshes:      %d\n", m.NumMeshes())
	fmt.Printf("Geometries:  %d\n", m.NumGeometries())
	fmt.Printf("Textures:    %d\n", m.NumTextures())
	fmt.Printf("TextureSets: %d\n", m.NumTextureSets())
	if len(m.Metadata) > 0 {
		fmt.Printf("Metadata:    %d bytes\n", len(m.Metadata))
	}
	return nil
}

func cmdSections(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sections", flag.ExitOnError)
	e, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, sectionsUsage)
		os.Exit(1)
	}

	buf, err := e.read(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	header, err := xkt.ReadHeader(buf)
	if err != nil {
		return err
	}
	layout, ok := xkt.LookupLayout(header.Version)
	if !ok {
		return &xkt.UnsupportedVersionError{Version: header.Version, Supported: xkt.Versions()}
	}

	elements, err := xkt.Frame(buf, layout)
	if err != nil {
		return err
	}
	stored := make([]int, len(elements))
	for i, el := range elements {
		stored[i] = len(el.Data)
	}
	if err := xkt.InflateElements(elements, xkt.ZlibCodec{}, e.cfg.Loader.Workers); err != nil {
		return err
	}

	fmt.Printf("Version %d, %s framing\n\n", layout.Version, layout.Framing)
	fmt.Printf("  %-40s %-8s %10s %10s\n", "FIELD", "TYPE", "STORED", "RAW")
	var totalStored, totalRaw int
	for i, el := range elements {
		fmt.Printf("  %-40s %-8s %10d %10d\n", el.Field.Name, el.Field.Type, stored[i], len(el.Data))
		totalStored += stored[i]
		totalRaw += len(el.Data)
	}
	fmt.Printf("  %-40s %-8s %10d %10d\n", "total", "", totalStored, totalRaw)
	return nil
}

func cmdLoad(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	metaPath := fs.String("metadata", "", "Metamodel JSON file")
	e, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, loadUsage)
		os.Exit(1)
	}

	opts, err := e.cfg.LoaderOptions()
	if err != nil {
		return err
	}
	opts.Logger = logger.Named("loader")

	var store *metadata.Store
	if *metaPath != "" {
		data, err := e.read(ctx, *metaPath)
		if err != nil {
			return err
		}
		prefix := ""
		if opts.GlobalizeIDs {
			prefix = opts.EntityID("")
		}
		store, err = metadata.NewStoreFromJSON(data, prefix)
		if err != nil {
			return err
		}
		opts.MetaStore = store
	}

	buf, err := e.read(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	model := scene.NewMemory()
	res, err := loader.Load(ctx, buf, model, opts)
	if err != nil {
		return err
	}

	s := res.Stats
	fmt.Printf("Loaded %s (v%d) in %v\n\n", fs.Arg(0), s.Version, s.Duration)
	fmt.Printf("Tiles:        %d\n", s.Tiles)
	fmt.Printf("Entities:     %d (filtered %d, empty %d)\n", s.Entities, s.EntitiesFiltered, s.EntitiesEmpty)
	fmt.Printf("Meshes:       %d (skipped %d)\n", s.Meshes, s.MeshesSkipped())
	fmt.Printf("Geometries:   %d (instanced %d, batched %d)\n", s.Geometries, s.Instanced, s.ForceBatched)
	fmt.Printf("Textures:     %d (undecoded %d)\n", s.Textures, s.TexturesUndecoded)
	fmt.Printf("TextureSets:  %d\n", s.TextureSets)

	if res.MetaStore != nil {
		store = res.MetaStore
	}
	if store != nil {
		printTypes(store.Types())
	}
	return nil
}

func printTypes(types map[string]int) {
	if len(types) == 0 {
		return
	}
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	// Sort by count
	slices.SortFunc(names, func(a, b string) int {
		if types[a] != types[b] {
			return types[b] - types[a]
		}
		return strings.Compare(a, b)
	})

	fmt.Println()
	fmt.Println("Objects by type:")
	for _, name := range names {
		fmt.Printf("  %-28s %d\n", name, types[name])
	}
}

func cmdUpgrade(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upgrade", flag.ExitOnError)
	versions := xkt.Versions()
	version := fs.Int("version", versions[len(versions)-1], "Target container version")
	raw := fs.Bool("uncompressed", false, "Skip compression where the version allows it")
	e, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, upgradeUsage)
		os.Exit(1)
	}

	buf, err := e.read(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	m, err := xkt.Decode(buf, xkt.DecodeOptions{Workers: e.cfg.Loader.Workers})
	if err != nil {
		return err
	}
	out, err := xkt.Encode(m, *version, xkt.EncodeOptions{Uncompressed: *raw})
	if err != nil {
		return err
	}

	outputPath := fs.Arg(1)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	fmt.Printf("Wrote: %s (v%d, %d bytes)\n", outputPath, *version, len(out))
	return nil
}

func cmdVersions() {
	fmt.Println("Supported versions:")
	for _, v := range xkt.Versions() {
		layout, _ := xkt.LookupLayout(v)
		era := "geometry"
		if layout.Primitives {
			era = "primitive"
		}
		fmt.Printf("  v%-3d %-13s %-10s %d elements\n", v, layout.Framing, era, len(layout.Fields))
	}
}
