package main

import (
	"flag"
	"log"

	"github.com/danmuck/sib1ctl/internal/config"
)

func main() {
	kind := flag.String("kind", "plan", "config kind: plan|runtime")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			path = defaultPath(*kind)
		}

		switch *kind {
		case "plan":
			if _, err := config.LoadPlanConfig(path); err != nil {
				log.Fatal(err)
			}
		case "runtime":
			rc, err := config.LoadRuntimeConfig(path)
			if err != nil {
				log.Fatal(err)
			}
			if rc.PlanPath != "" {
				if _, err := config.LoadPlanConfig(rc.PlanPath); err != nil {
					log.Fatal(err)
				}
			}
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		target = defaultPath(*kind)
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}

func defaultPath(kind string) string {
	switch kind {
	case "plan":
		return "cmd/sib1ctl/plan.toml"
	case "runtime":
		return "cmd/sib1ctl/config.toml"
	default:
		log.Fatalf("unknown kind: %s", kind)
		return ""
	}
}
