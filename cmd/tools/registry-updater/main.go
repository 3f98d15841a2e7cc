// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"listingreel-workers/pkg/registry"
)

var registryPath string

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	showCmd := flag.NewFlagSet("show", flag.ExitOnError)

	validateCmd.StringVar(&registryPath, "path", "templates", "Path to the template directory")
	listCmd.StringVar(&registryPath, "path", "templates", "Path to the template directory")

	showCmd.StringVar(&registryPath, "path", "templates", "Path to the template directory")
	idShow := showCmd.String("id", "", "Template ID to show")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.Load(registryPath)
		if err != nil {
			fmt.Printf("Template validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Template validation passed (%d templates).\n", reg.Len())

	case "list":
		listCmd.Parse(os.Args[2:])
		reg, err := registry.Load(registryPath)
		if err != nil {
			fmt.Printf("Error loading templates: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%-24s %-10s %-8s %-8s\n", "ID", "ORIENT", "CLIPS", "IMAGES")
		for _, tpl := range reg.List() {
			fmt.Printf("%-24s %-10s %-8d %-8d\n", tpl.ID, tpl.Orientation, len(tpl.Clips), tpl.ImageClipCount())
		}

	case "show":
		showCmd.Parse(os.Args[2:])
		if *idShow == "" {
			fmt.Println("Error: id is required for show.")
			showCmd.Usage()
			os.Exit(1)
		}
		reg, err := registry.Load(registryPath)
		if err != nil {
			fmt.Printf("Error loading templates: %v\n", err)
			os.Exit(1)
		}
		tpl, err := reg.Get(*idShow)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		out, err := json.MarshalIndent(tpl, "", "  ")
		if err != nil {
			fmt.Printf("Error encoding template: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))

	case "help":
		fallthrough
	default:
		help()
	}
}

func help() {
	fmt.Println(`Usage: registry-updater <command> [flags]

Commands:
  validate  Load every template in the directory and check it against the schema
  list      Print a summary table of all templates
  show      Print one template as JSON

Flags:
  -path  Path to the template directory (default "templates")
  -id    Template ID (show only)`)
}
