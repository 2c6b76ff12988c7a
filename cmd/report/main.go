package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/drakos74/segments/infra/config"
	"github.com/drakos74/segments/internal/dashboard"
	"github.com/drakos74/segments/internal/eda"
	"github.com/drakos74/segments/internal/storage"
	"github.com/drakos74/segments/internal/storage/file/csv"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

func main() {
	configPath := flag.String("config", config.DefaultPath, "path of the json config")
	dataPath := flag.String("data", "", "customer file, overrides the config")
	mode := flag.String("mode", string(dashboard.Clustering), "analysis mode: eda or kmeans")
	k := flag.Int("k", 0, "number of clusters, defaults to the config")
	elbow := flag.Bool("elbow", false, "show the inertia curve")
	rows := flag.Int("rows", 0, "number of raw rows to print")
	flag.Parse()

	settings, err := config.LoadSettings(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("could not load settings")
	}
	cfg, err := dashboard.ParseConfig(settings.Dashboard)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("could not load dashboard config")
	}
	if *dataPath != "" {
		cfg.DataPath = *dataPath
	}

	service, err := dashboard.New(cfg, storage.NewCache(csv.NewLoader()), nil)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create dashboard")
	}
	session, err := service.Open(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("could not load customers")
	}
	m, err := dashboard.ParseMode(*mode)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid mode")
	}

	out := os.Stdout
	if *rows > 0 {
		page, err := service.Raw(session, 0, *rows)
		if err != nil {
			log.Fatal().Err(err).Msg("could not read rows")
		}
		printRaw(out, page)
	}

	switch m {
	case dashboard.Explore:
		summary, err := service.Explore(session)
		if err != nil {
			log.Fatal().Err(err).Msg("could not explore customers")
		}
		for _, h := range []eda.Histogram{summary.Age, summary.Income, summary.Score} {
			printHistogram(out, h)
		}
		printBreakdown(out, summary.Gender)
	case dashboard.Clustering:
		segmentation, err := service.Cluster(session, dashboard.Controls{Mode: m, K: *k, Elbow: *elbow})
		if err != nil {
			log.Fatal().Err(err).Msg("could not cluster customers")
		}
		printSegmentation(out, segmentation)
	}
}

func printRaw(w io.Writer, page dashboard.Page) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"id", "gender", "age", "income (k$)", "score"})
	for _, c := range page.Customers {
		table.Append([]string{
			fmt.Sprintf("%d", c.ID),
			c.Gender,
			fmt.Sprintf("%d", c.Age),
			fmt.Sprintf("%.0f", c.Income),
			fmt.Sprintf("%.0f", c.Score),
		})
	}
	table.Render()
	fmt.Fprintf(w, "%d of %d customers\n", len(page.Customers), page.Total)
}

func printHistogram(w io.Writer, h eda.Histogram) {
	fmt.Fprintf(w, "\n%s (mean %.2f, std %.2f)\n", h.Column, h.Mean, h.StdDev)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"from", "to", "count"})
	for _, b := range h.Bins {
		table.Append([]string{
			fmt.Sprintf("%.2f", b.Lower),
			fmt.Sprintf("%.2f", b.Upper),
			fmt.Sprintf("%d", b.Count),
		})
	}
	table.Render()
}

func printBreakdown(w io.Writer, b eda.Breakdown) {
	fmt.Fprintf(w, "\n%s\n", b.Column)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"label", "count", "share"})
	for _, s := range b.Shares {
		table.Append([]string{
			s.Label,
			fmt.Sprintf("%d", s.Count),
			fmt.Sprintf("%.1f%%", 100*s.Proportion),
		})
	}
	table.Render()
}

func printSegmentation(w io.Writer, s *dashboard.Segmentation) {
	fmt.Fprintf(w, "\n%d segments (%s) inertia %.3f silhouette %.3f\n", s.K, s.Engine, s.Inertia, s.Silhouette)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"cluster", "size", "age", "income (k$)", "score", "center income", "center score"})
	for i, p := range s.Profiles {
		c := s.Centers[i]
		table.Append([]string{
			fmt.Sprintf("%d", p.Cluster),
			fmt.Sprintf("%d", p.Size),
			fmt.Sprintf("%.1f", p.Age),
			fmt.Sprintf("%.1f", p.Income),
			fmt.Sprintf("%.1f", p.Score),
			fmt.Sprintf("%.1f", c.Income),
			fmt.Sprintf("%.1f", c.Score),
		})
	}
	table.Render()

	if len(s.Elbow) > 0 {
		inertia := make([]float64, len(s.Elbow))
		for i, p := range s.Elbow {
			inertia[i] = p.Inertia
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, asciigraph.Plot(inertia,
			asciigraph.Height(12),
			asciigraph.Caption(fmt.Sprintf("inertia for k = 1..%d", len(inertia)))))
	}
}
