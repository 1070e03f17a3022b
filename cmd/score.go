package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kozaktomas/frushion/internal/analysis"
	"github.com/kozaktomas/frushion/internal/beauty"
	"github.com/kozaktomas/frushion/internal/client"
	"github.com/kozaktomas/frushion/internal/config"
	"github.com/kozaktomas/frushion/internal/constants"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute the golden ratio score of five face landmarks",
	Long: `Compute the golden ratio beauty score of five face landmarks
(left eye, right eye, nose tip, left mouth corner, right mouth corner).

Landmarks come from repeated --point flags, a --landmarks JSON array or a
--file holding either a JSON array or a {"landmarks": [...]} document.
A full face mesh (468 points) is reduced to the five scoring points.

Examples:
  frushion score --point 0,0 --point 1,0 --point 0,1 --point 0,2 --point 1,2
  frushion score --landmarks '[[0,0],[1,0],[0,1],[0,2],[1,2]]'
  frushion score --file mesh.json --remote`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringSlice("point", nil, "Landmark as x,y (repeat five times)")
	scoreCmd.Flags().String("landmarks", "", "Landmarks as a JSON array of [x,y] points")
	scoreCmd.Flags().String("file", "", "JSON file with landmarks or a face mesh")
	scoreCmd.Flags().Bool("remote", false, "Score through ANALYSIS_SERVICE_URL instead of locally")
	scoreCmd.Flags().Bool("json", false, "Output as JSON")
}

// parsePoints parses "x,y" pairs. Extra coordinates are ignored like in JSON landmarks.
func parsePoints(values []string) ([]beauty.Point, error) {
	points := make([]beauty.Point, 0, len(values))
	for _, v := range values {
		parts := strings.Split(v, ",")
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid point %q: want x,y", v)
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("invalid point %q: coordinates must be numbers", v)
		}
		points = append(points, beauty.Point{X: x, Y: y})
	}
	return points, nil
}

// readLandmarksFile accepts a bare point array or a {"landmarks": [...]} document.
func readLandmarksFile(path string) ([]beauty.Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var points []beauty.Point
	if err := json.Unmarshal(data, &points); err == nil {
		return points, nil
	}
	var doc struct {
		Landmarks []beauty.Point `json:"landmarks"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc.Landmarks, nil
}

func scoreLandmarks(cmd *cobra.Command) ([]beauty.Point, error) {
	var points []beauty.Point
	var err error
	switch {
	case len(mustGetStringSlice(cmd, "point")) > 0:
		points, err = parsePoints(mustGetStringSlice(cmd, "point"))
	case mustGetString(cmd, "landmarks") != "":
		points, err = parseLandmarks(mustGetString(cmd, "landmarks"))
	case mustGetString(cmd, "file") != "":
		points, err = readLandmarksFile(mustGetString(cmd, "file"))
	default:
		return nil, errors.New("no landmarks given: use --point, --landmarks or --file")
	}
	if err != nil {
		return nil, err
	}
	if len(points) > constants.MinLandmarks {
		return beauty.FromMesh(points)
	}
	return points, nil
}

func runScore(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	points, err := scoreLandmarks(cmd)
	if err != nil {
		return err
	}

	var scorer analysis.Scorer = analysis.LocalScorer{}
	if mustGetBool(cmd, "remote") {
		cfg := config.Load()
		if cfg.Analysis.ServiceURL == "" {
			return fmt.Errorf("%w: ANALYSIS_SERVICE_URL is required for --remote", analysis.ErrNotConfigured)
		}
		scorer = client.New(cfg.Analysis.ServiceURL)
	}

	score, err := scorer.Score(context.Background(), points)
	if err != nil {
		if errors.Is(err, beauty.ErrNoFace) {
			return errors.New(analysis.MsgNoValidFace)
		}
		return fmt.Errorf("scoring failed: %w", err)
	}

	if jsonOutput {
		data, _ := json.Marshal(map[string]string{"score": score})
		fmt.Println(string(data))
		return nil
	}
	fmt.Printf("Score: %s\n", score)
	return nil
}
