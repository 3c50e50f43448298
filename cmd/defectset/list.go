package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/defectset/internal/output"
	"github.com/panbanda/defectset/pkg/extractor"
	"github.com/panbanda/defectset/pkg/features"
)

func featuresCmd() *cli.Command {
	return &cli.Command{
		Name:  "features",
		Usage: "List the registered feature names",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Usage: "Only list features of this tag",
			},
		},
		Action: runFeaturesCmd,
	}
}

func runFeaturesCmd(c *cli.Context) error {
	list := features.Registry()
	if t := c.String("type"); t != "" {
		typ, err := features.ParseType(t)
		if err != nil {
			return err
		}
		list = features.ByType(typ)
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(featureTable(list))
}

func featureTable(list []features.Feature) *output.Table {
	rows := make([][]string, len(list))
	for i, f := range list {
		rows[i] = []string{f.Name, string(f.Type), f.Column, f.Description}
	}
	return output.NewTable("Features",
		[]string{"Name", "Type", "Column", "Description"},
		rows,
		[]string{fmt.Sprintf("%d features", len(list))},
		list,
	)
}

func adaptersCmd() *cli.Command {
	return &cli.Command{
		Name:   "adapters",
		Usage:  "List the tool adapters and whether their tools are configured",
		Action: runAdaptersCmd,
	}
}

type adapterRow struct {
	Name      string   `json:"name"`
	Types     []string `json:"types"`
	Available bool     `json:"available"`
}

func runAdaptersCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	tools, err := cfg.ExtractorTools()
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(adapterTable(extractor.Registry(), tools))
}

func adapterTable(exs []extractor.Extractor, tools extractor.Tools) *output.Table {
	rows := make([][]string, 0, len(exs))
	data := make([]adapterRow, 0, len(exs))
	for _, ex := range exs {
		r := adapterRow{Name: ex.Name(), Available: true}
		for _, t := range ex.Types() {
			r.Types = append(r.Types, string(t))
		}
		if a, ok := ex.(extractor.Availability); ok {
			r.Available = a.Available(tools)
		}
		status := "yes"
		if !r.Available {
			status = "no"
		}
		data = append(data, r)
		rows = append(rows, []string{r.Name, strings.Join(r.Types, ", "), status})
	}
	return output.NewTable("Adapters", []string{"Adapter", "Types", "Available"}, rows, nil, data)
}
