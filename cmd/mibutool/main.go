// mibutool is a headless CLI for inspecting skin models and painting atlases.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/mibu/internal/assets"
	"github.com/Faultbox/mibu/internal/bones"
	"github.com/Faultbox/mibu/internal/config"
	"github.com/Faultbox/mibu/internal/engine/camera"
	"github.com/Faultbox/mibu/internal/logger"
	"github.com/Faultbox/mibu/internal/session"
	"github.com/Faultbox/mibu/internal/uvmap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "models", "ls":
		cmdModels(args)
	case "info":
		cmdInfo(args)
	case "tree":
		cmdTree(args)
	case "which":
		cmdWhich(args)
	case "pick":
		cmdPick(args)
	case "paint":
		cmdPaint(args)
	case "export", "x":
		cmdExport(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mibutool - skin model and atlas utility

Usage:
  mibutool <command> [options]

Commands:
  models                              List catalog models
  info <model>                        Show atlas size, bones and cubes
  tree <model>                        Print the bone hierarchy
  which <model> <x,y>                 Show the cube whose footprint holds a pixel
  pick <model> <sx,sy>                Cast a ray from a 3D view pixel
  paint <model> -o <out> <x,y>...     Paint pixels and save the atlas
  export <model> -o <out>             Save the atlas (.png/.webp) or model (.glb)

Models are catalog names or paths to .geo.json files. Every command
accepts -dir to add catalog directories and -v for debug logging.

Examples:
  mibutool tree steve
  mibutool which steve 12,10
  mibutool pick -view back -size 800x600 steve 400,300
  mibutool paint -color "#00ff00" -o green.png steve 8,8 9,8 10,8
  mibutool export -o steve.glb steve`)
}

// common holds the flags every model command takes.
type common struct {
	dirs    stringList
	verbose bool
	texture string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.Var(&c.dirs, "dir", "Catalog directory (repeatable)")
	fs.BoolVar(&c.verbose, "v", false, "Enable debug logging")
	fs.StringVar(&c.texture, "texture", "", "Base texture catalog name")
}

// open builds a session and loads the model named by ref.
func (c *common) open(ref string, opts session.Options) *session.Session {
	if c.verbose {
		logger.Init("debug", "")
	}
	if c.texture != "" {
		opts.Texture = c.texture
	}

	am := assets.NewCatalog(c.dirs, logger.Named("assets"))
	sess, err := session.New(am, opts, logger.Named("session"))
	if err != nil {
		fail(err)
	}
	if err := sess.Open(ref); err != nil {
		fail(err)
	}
	return sess
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	logger.Sync()
	os.Exit(1)
}

func usage(line string) {
	fmt.Fprintln(os.Stderr, "Usage: mibutool "+line)
	os.Exit(1)
}

func cmdModels(args []string) {
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	var c common
	c.register(fs)
	fs.Parse(args)

	am := assets.NewCatalog(c.dirs, nil)
	names := am.Models()
	for _, name := range names {
		fmt.Println(name)
	}
	fmt.Fprintf(os.Stderr, "\n(%d models)\n", len(names))
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	var c common
	c.register(fs)
	fs.Parse(args)
	if fs.NArg() < 1 {
		usage("info <model>")
	}

	sess := c.open(fs.Arg(0), session.DefaultOptions())
	g := sess.Model().Geometry()
	mesh := sess.Mesh()

	fmt.Printf("Model:    %s\n", sess.Model().Source().Name)
	fmt.Printf("Geometry: %s\n", g.Description.Identifier)
	fmt.Printf("Atlas:    %dx%d\n", g.Description.TextureWidth, g.Description.TextureHeight)
	fmt.Printf("Bones:    %d\n", len(g.Bones))
	fmt.Printf("Cubes:    %d\n", g.CubeCount())
	if mesh != nil {
		size := mesh.Bounds.Size()
		fmt.Printf("Bounds:   %.2f x %.2f x %.2f\n", size.X, size.Y, size.Z)
	}
}

func cmdTree(args []string) {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)
	var c common
	c.register(fs)
	fs.Parse(args)
	if fs.NArg() < 1 {
		usage("tree <model>")
	}

	sess := c.open(fs.Arg(0), session.DefaultOptions())
	sess.Model().Forest().Walk(func(n *bones.Node) bool {
		fmt.Printf("%s%s", strings.Repeat("  ", n.Depth), n.Name())
		if len(n.Bone.Cubes) > 0 {
			fmt.Printf(" (%d cubes)", len(n.Bone.Cubes))
		}
		if n.Bone.Mirror {
			fmt.Print(" mirrored")
		}
		fmt.Println()
		return true
	})
}

func cmdWhich(args []string) {
	fs := flag.NewFlagSet("which", flag.ExitOnError)
	var c common
	c.register(fs)
	fs.Parse(args)
	if fs.NArg() < 2 {
		usage("which <model> <x,y>")
	}

	sess := c.open(fs.Arg(0), session.DefaultOptions())
	x, y, err := parsePixel(fs.Arg(1))
	if err != nil {
		fail(err)
	}

	ref, ok := uvmap.FirstCubeAt(sess.Model().Geometry(), x, y)
	if !ok {
		fmt.Printf("(%d,%d): no cube\n", x, y)
		return
	}
	fmt.Printf("(%d,%d): %s cube %d\n", x, y, ref.Bone.Name, ref.Index)
}

func cmdPick(args []string) {
	fs := flag.NewFlagSet("pick", flag.ExitOnError)
	var c common
	c.register(fs)
	view := fs.String("view", "front", "View preset (front, back, left, right, up, down)")
	size := fs.String("size", "512x512", "3D view size in pixels")
	fs.Parse(args)
	if fs.NArg() < 2 {
		usage("pick [-view v] [-size WxH] <model> <sx,sy>")
	}

	opts := session.DefaultOptions()
	opts.ViewDuration = 0
	sess := c.open(fs.Arg(0), opts)

	w, h, err := parseSize(*size)
	if err != nil {
		fail(err)
	}
	v, err := camera.ParseView(*view)
	if err != nil {
		fail(err)
	}
	sx, sy, err := parsePixel(fs.Arg(1))
	if err != nil {
		fail(err)
	}

	sess.SetModelViewport(float32(w), float32(h))
	sess.SetView(v)

	p, ok := sess.PointerModel(float32(sx), float32(sy))
	if !ok {
		fmt.Printf("(%d,%d): miss\n", sx, sy)
		return
	}
	fmt.Printf("(%d,%d): atlas pixel (%d,%d)", sx, sy, p.X, p.Y)
	if ref, ok := sess.HoveredCube(); ok {
		fmt.Printf(" on %s cube %d", ref.Bone.Name, ref.Index)
	}
	fmt.Println()
}

func cmdPaint(args []string) {
	fs := flag.NewFlagSet("paint", flag.ExitOnError)
	var c common
	c.register(fs)
	colorHex := fs.String("color", "#ff0000", "Brush colour")
	out := fs.String("o", "", "Output file (.png or .webp)")
	fs.Parse(args)
	if fs.NArg() < 2 || *out == "" {
		usage("paint [-color #rrggbb] -o <out> <model> <x,y>...")
	}

	col, err := config.ParseColor(*colorHex)
	if err != nil {
		fail(err)
	}
	opts := session.DefaultOptions()
	opts.BrushColor = col
	sess := c.open(fs.Arg(0), opts)

	painted := 0
	for _, arg := range fs.Args()[1:] {
		x, y, err := parsePixel(arg)
		if err != nil {
			fail(err)
		}
		// the same down/up sequence a pointer produces over the preview
		sess.Brush().SetPreview(x, y)
		if sess.PointerDown() {
			painted++
		} else {
			fmt.Fprintf(os.Stderr, "skipping (%d,%d): outside the atlas\n", x, y)
		}
		sess.PointerUp()
	}
	sess.LeavePreview()

	path, err := sess.Export(*out)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Painted %d pixels: %s\n", painted, path)
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var c common
	c.register(fs)
	out := fs.String("o", "", "Output file (.png, .webp or .glb)")
	fs.Parse(args)
	if fs.NArg() < 1 || *out == "" {
		usage("export -o <out> <model>")
	}

	sess := c.open(fs.Arg(0), session.DefaultOptions())

	var (
		path string
		err  error
	)
	if strings.EqualFold(filepath.Ext(*out), ".glb") {
		path, err = sess.ExportModel(*out)
	} else {
		path, err = sess.Export(*out)
	}
	if err != nil {
		fail(err)
	}
	fmt.Printf("Exported: %s\n", path)
}
