package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpdoctor "github.com/httpdoctor/httpdoctor"
	"github.com/httpdoctor/httpdoctor/note"
	harreport "github.com/httpdoctor/httpdoctor/pkg/har-report"
)

var (
	checkTimeoutFlag      time.Duration
	checkMaxRedirectsFlag int
	checkSingleFlag       bool
	checkHarFlag          string
	checkTextFlag         bool
)

var checkCmd = &cobra.Command{
	Use:   "check <url>",
	Short: "Check one resource and print its diagnosis",
	Example: `  httpdoctor check https://example.com/
  httpdoctor check --single http://localhost:8080/api
  httpdoctor check --har out.har https://example.com/`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().DurationVar(&checkTimeoutFlag, "timeout", 0,
		"Timeout per fetch (default 15s)")
	checkCmd.Flags().IntVar(&checkMaxRedirectsFlag, "max-redirects", 0,
		"Maximum redirect hops to follow (default 5)")
	checkCmd.Flags().BoolVar(&checkSingleFlag, "single", false,
		"Single fetch only, skip redirect/conditional/range/negotiation retries")
	checkCmd.Flags().StringVar(&checkHarFlag, "har", "",
		"Write the diagnosis as a HAR file")
	checkCmd.Flags().BoolVar(&checkTextFlag, "text", false,
		"Include the longer explanation under each note")
}

func runCheck(cmd *cobra.Command, args []string) error {
	doctor, err := httpdoctor.New(httpdoctor.Config{
		FetchTimeout:   checkTimeoutFlag,
		MaxRedirects:   checkMaxRedirectsFlag,
		DisableRelated: checkSingleFlag,
		Logger:         &log.Logger,
	})
	if err != nil {
		return err
	}

	diag := doctor.Check(cmd.Context(), args[0])
	printDiagnosis(diag, "")

	if checkHarFlag != "" {
		doc, err := harreport.FromDiagnosis(diag).Marshal()
		if err != nil {
			return err
		}
		if err := os.WriteFile(checkHarFlag, doc, 0644); err != nil {
			return err
		}
		fmt.Printf("\nHAR written to %s\n", checkHarFlag)
	}

	if diag.Severest() == note.Bad {
		os.Exit(2)
	}
	return nil
}

var severityColors = map[note.Severity]*color.Color{
	note.Good:    color.New(color.FgGreen),
	note.Info:    color.New(color.FgCyan),
	note.Warning: color.New(color.FgYellow),
	note.Bad:     color.New(color.FgRed, color.Bold),
}

func printDiagnosis(diag *httpdoctor.Diagnosis, heading string) {
	if heading != "" {
		fmt.Printf("\n%s %s\n", color.New(color.Bold).Sprint(heading), diag.URI)
	} else {
		fmt.Println(color.New(color.Bold).Sprint(diag.URI))
	}
	if diag.Message != nil {
		fmt.Printf("  %s %d %s\n",
			diag.Message.Version, diag.Message.StatusCode, diag.Message.ReasonPhrase)
	}

	for _, n := range diag.Notes {
		c := severityColors[n.Severity]
		fmt.Printf("  %s %s", c.Sprintf("[%s]", n.Severity), n.Summary())
		if name := n.HeaderName(); name != "" {
			fmt.Printf(" (%s)", name)
		}
		fmt.Println()
		if checkTextFlag && n.Text() != "" {
			fmt.Printf("        %s\n", n.Text())
		}
		if n.Ref != "" {
			fmt.Printf("        see %s\n", n.Ref)
		}
	}

	for _, kind := range []httpdoctor.RelationKind{
		httpdoctor.RelationRedirect,
		httpdoctor.RelationConditional,
		httpdoctor.RelationRange,
		httpdoctor.RelationConneg,
	} {
		if child, ok := diag.Related[kind]; ok {
			printDiagnosis(child, string(kind)+":")
		}
	}
}
