package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/MattaKruger/timbre/config"
	"github.com/MattaKruger/timbre/logging"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))

	switch os.Args[1] {
	case "extract":
		extractCmd := flag.NewFlagSet("extract", flag.ExitOnError)
		save := extractCmd.Bool("save", false, "persist the vector after extraction")
		jsonOut := extractCmd.Bool("json", false, "print the vector as JSON")
		extractCmd.Parse(os.Args[2:])
		if extractCmd.NArg() < 1 {
			fmt.Println("usage: timbre extract [-save] [-json] <audio_file>")
			os.Exit(1)
		}
		runExtract(cfg, extractCmd.Arg(0), *save, *jsonOut)

	case "ingest":
		ingestCmd := flag.NewFlagSet("ingest", flag.ExitOnError)
		force := ingestCmd.Bool("force", false, "insert even when the filename is already stored")
		ingestCmd.BoolVar(force, "f", false, "insert even when the filename is already stored (shorthand)")
		dir := ingestCmd.String("dir", "", "directory to scan (default: TIMBRE_DATA_DIR)")
		ingestCmd.Parse(os.Args[2:])
		runIngest(cfg, *dir, *force)

	case "view":
		viewCmd := flag.NewFlagSet("view", flag.ExitOnError)
		limit := viewCmd.Int("limit", 20, "maximum vectors to show")
		filename := viewCmd.String("filename", "", "show only vectors stored under this filename")
		id := viewCmd.String("id", "", "show one vector by id")
		jsonOut := viewCmd.Bool("json", false, "print JSON instead of a table")
		viewCmd.Parse(os.Args[2:])
		runView(cfg, *limit, *filename, *id, *jsonOut)

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("usage: timbre <command>")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  extract [-save] [-json] <audio_file>     extract features from one file")
	fmt.Println("  ingest  [-f|-force] [-dir <dir>]         extract a directory and store the vectors")
	fmt.Println("  view    [-limit n] [-filename name] [-id id] [-json]")
	fmt.Println("                                           show stored vectors")
}
