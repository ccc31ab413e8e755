package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arxfloor/roomdetect/internal/geometry"
	"github.com/arxfloor/roomdetect/internal/orchestrator"
	"github.com/arxfloor/roomdetect/internal/room"
)

var (
	detectLinesFile string
	detectSVGFile   string
	detectImageFile string
	detectStrategy  string
	detectArea      float64
	detectDoor      float64
	detectOutput    string
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect rooms in a local lines/SVG/image file",
	Long: `Runs the detection orchestrator directly against a local file, without a
running server. Exactly one of --lines, --svg, or --image must be given.`,
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectLinesFile, "lines", "", "path to a JSON file containing a list of geometry.Line")
	detectCmd.Flags().StringVar(&detectSVGFile, "svg", "", "path to an SVG file")
	detectCmd.Flags().StringVar(&detectImageFile, "image", "", "path to a PNG or JPEG file")
	detectCmd.Flags().StringVar(&detectStrategy, "strategy", string(orchestrator.GraphOnly), "detection strategy")
	detectCmd.Flags().Float64Var(&detectArea, "area-threshold", 100, "minimum room area")
	detectCmd.Flags().Float64Var(&detectDoor, "door-threshold", 0, "door-gap bridging distance (0 disables)")
	detectCmd.Flags().StringVar(&detectOutput, "output", "table", "output format: table or json")
}

func runDetect(cmd *cobra.Command, args []string) error {
	req, err := buildRequest()
	if err != nil {
		return err
	}

	orch := &orchestrator.Orchestrator{}
	result, err := orch.Detect(context.Background(), req)
	if err != nil {
		return err
	}

	switch detectOutput {
	case "json":
		return printJSON(result)
	case "table":
		printTable(result)
		return nil
	default:
		return fmt.Errorf("unknown output format %q: must be table or json", detectOutput)
	}
}

func buildRequest() (orchestrator.Request, error) {
	given := 0
	for _, f := range []string{detectLinesFile, detectSVGFile, detectImageFile} {
		if f != "" {
			given++
		}
	}
	if given != 1 {
		return orchestrator.Request{}, fmt.Errorf("exactly one of --lines, --svg, or --image is required")
	}

	req := orchestrator.Request{
		Strategy:      orchestrator.Strategy(detectStrategy),
		AreaThreshold: detectArea,
		DoorThreshold: detectDoor,
	}

	switch {
	case detectLinesFile != "":
		data, err := os.ReadFile(detectLinesFile)
		if err != nil {
			return req, fmt.Errorf("read lines file: %w", err)
		}
		var lines []geometry.Line
		if err := json.Unmarshal(data, &lines); err != nil {
			return req, fmt.Errorf("parse lines file: %w", err)
		}
		req.Lines = lines

	case detectSVGFile != "":
		data, err := os.ReadFile(detectSVGFile)
		if err != nil {
			return req, fmt.Errorf("read svg file: %w", err)
		}
		req.SVGText = string(data)

	case detectImageFile != "":
		data, err := os.ReadFile(detectImageFile)
		if err != nil {
			return req, fmt.Errorf("read image file: %w", err)
		}
		req.ImageBytes = data
	}

	return req, nil
}

func printJSON(result *room.DetectionResult) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func printTable(result *room.DetectionResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tAREA\tTYPE\tNAME HINT\tMETHOD\n")
	for _, r := range result.Rooms {
		roomType := r.RoomType
		if roomType == "" {
			roomType = "-"
		}
		fmt.Fprintf(w, "%d\t%.1f\t%s\t%s\t%s\n", r.ID, r.Area, roomType, r.NameHint, r.DetectionMethod)
	}
	w.Flush()

	fmt.Printf("\n%d room(s) detected via %s in %dms\n", len(result.Rooms), result.MethodUsed, result.ExecutionTimeMs)
	if len(result.Metadata.Errors) > 0 {
		var parts []string
		for k, v := range result.Metadata.Errors {
			parts = append(parts, fmt.Sprintf("%s: %s", k, v))
		}
		fmt.Printf("warnings: %s\n", strings.Join(parts, "; "))
	}
}
