package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-doc-enhancer/internal/enhancer"
	"go-doc-enhancer/internal/observer"
	"go-doc-enhancer/internal/repository"
	"go-doc-enhancer/internal/service"
	"go-doc-enhancer/internal/storage"
	"go-doc-enhancer/internal/workers"
	"go-doc-enhancer/pkg/models"

	"github.com/disintegration/imaging"
)

const maxImagePixels = 100_000_000

func main() {
	os.Exit(run())
}

// run returns the exit code
func run() int {
	profile := flag.String("profile", enhancer.DefaultProfile, "document profile: "+strings.Join(enhancer.ProfileNames(), ", "))
	optionsJSON := flag.String("options", "", "JSON enhancement options overriding the profile")
	assessOnly := flag.Bool("assess", false, "print quality assessments without enhancing")
	outDir := flag.String("out", "", "output directory (defaults to the input's directory)")
	workerCount := flag.Int("workers", 0, "concurrent images (defaults to CPU count)")
	timeout := flag.Duration("timeout", 2*time.Minute, "per-image time limit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <image|url>...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	var override *models.EnhancementOptions
	if *optionsJSON != "" {
		override = &models.EnhancementOptions{}
		if err := json.Unmarshal([]byte(*optionsJSON), override); err != nil {
			log.Printf("Invalid -options: %v", err)
			return 2
		}
	}

	repo := repository.NewSourceImageRepository(storage.NewHTTPImageFetcher(30*time.Second, 50*1024*1024, storage.WithMaxPixels(maxImagePixels)))
	pool := workers.NewWorkerPool(*workerCount)
	defer pool.Close()
	svc := service.NewEnhancementService(repo, enhancer.New(), observer.NewEventPublisher(), pool, service.Settings{
		EnhanceTimeout: *timeout,
		MaxImagePixels: maxImagePixels,
	})

	ctx := context.Background()
	inputs := make([]service.EnhanceInput, 0, flag.NArg())
	for _, arg := range flag.Args() {
		img, err := load(ctx, repo, arg)
		if err != nil {
			log.Printf("%s: %v", arg, err)
			continue
		}
		inputs = append(inputs, service.EnhanceInput{
			Image:   img,
			Source:  arg,
			Profile: *profile,
			Options: override,
		})
	}

	failed := len(inputs) < flag.NArg()
	if *assessOnly {
		for _, in := range inputs {
			resp, err := svc.AssessImage(ctx, in.Image, in.Source)
			if err != nil {
				log.Printf("%s: %v", in.Source, err)
				failed = true
				continue
			}
			printAssessment(in.Source, resp.Assessment)
		}
	} else {
		for i, res := range svc.EnhanceBatch(ctx, inputs) {
			source := inputs[i].Source
			if res.Err != nil {
				log.Printf("%s: %v", source, res.Err)
				failed = true
				continue
			}
			dst := outputPath(source, *outDir)
			if err := imaging.Save(res.Output.Image.NRGBA(), dst); err != nil {
				log.Printf("%s: %v", source, err)
				failed = true
				continue
			}
			printAssessment(source, res.Output.Response.Baseline)
			fmt.Printf("  stages: %s\n  saved:  %s\n", strings.Join(res.Output.Response.AppliedStages, " -> "), dst)
		}
	}

	if failed {
		return 1
	}
	return 0
}

func load(ctx context.Context, repo repository.ImageRepository, arg string) (*models.RasterImage, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return repo.FetchImage(ctx, arg)
	}
	img, err := imaging.Open(arg, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	return models.FromImage(img), nil
}

func outputPath(source, dir string) string {
	base := filepath.Base(source)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		name = "image"
	}
	if dir == "" && !strings.Contains(source, "://") {
		dir = filepath.Dir(source)
	}
	return filepath.Join(dir, name+"_enhanced.png")
}

func printAssessment(source string, qa models.QualityAssessment) {
	fmt.Printf("%s\n  overall %d (acceptable: %t)  brightness %d  contrast %d  sharpness %d  noise %d  skew %.1f°\n",
		source, qa.OverallScore, qa.IsAcceptable, qa.Brightness, qa.Contrast, qa.Sharpness, qa.Noise, qa.SkewAngle)
	for _, rec := range qa.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}
}
