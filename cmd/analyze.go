package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kozaktomas/frushion/internal/analysis"
	"github.com/kozaktomas/frushion/internal/beauty"
	"github.com/kozaktomas/frushion/internal/config"
	"github.com/kozaktomas/frushion/internal/database"
	"github.com/kozaktomas/frushion/internal/expression"
	"github.com/kozaktomas/frushion/internal/frame"
	"github.com/kozaktomas/frushion/internal/skin"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>...",
	Short: "Analyze skin and brightness of image files",
	Long: `Run a one-shot skin and brightness analysis on each image file.
With --expression the facial expression is classified as well.

Examples:
  frushion analyze selfie.jpg
  frushion analyze --skin openai --expression openai selfie.jpg
  frushion analyze --save --json frames/*.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("skin", "", "Skin source: frame, random or an AI provider (default SKIN_SOURCE)")
	analyzeCmd.Flags().String("expression", "", "Also classify the expression with this provider (simulated, remote, openai, ...)")
	analyzeCmd.Flags().Bool("save", false, "Save the skin results")
	analyzeCmd.Flags().Bool("json", false, "Output as JSON")
}

// ImageAnalysis is the analysis of one image file.
type ImageAnalysis struct {
	File       string             `json:"file"`
	Skin       *skin.Result       `json:"skin,omitempty"`
	Tips       []string           `json:"tips,omitempty"`
	Brightness string             `json:"brightness,omitempty"`
	Expression *expression.Result `json:"expression,omitempty"`
	Error      string             `json:"error,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	save := mustGetBool(cmd, "save")
	exprName := mustGetString(cmd, "expression")

	ctx := context.Background()
	cfg := config.Load()

	skinInvoker, err := analysis.NewInvoker(ctx, cfg, analysis.InvokerOptions{
		Mode: analysis.ModeSkin,
		Skin: mustGetString(cmd, "skin"),
	})
	if err != nil {
		return err
	}
	var classifier expression.Classifier
	if exprName != "" {
		if classifier, err = analysis.NewClassifier(ctx, cfg, exprName); err != nil {
			return err
		}
	}

	var writer database.AnalysisWriter
	if save {
		closeStorage, err := initStorage(cfg, jsonOutput)
		if err != nil {
			return err
		}
		defer closeStorage()
		if writer, err = database.GetAnalysisWriter(ctx); err != nil {
			return err
		}
	}

	results := make([]ImageAnalysis, 0, len(args))
	failed := 0
	for _, path := range args {
		res := analyzeImage(ctx, path, skinInvoker, classifier)
		if res.Error != "" {
			failed++
		} else if writer != nil && res.Skin != nil {
			record := database.NewStoredAnalysis("", analysis.ModeSkin, res.Skin, res.Expression, res.Brightness)
			if err := writer.Save(ctx, record); err != nil {
				res.Error = fmt.Sprintf("failed to save: %v", err)
				failed++
			}
		}
		results = append(results, res)
		if !jsonOutput {
			printImageAnalysis(res)
		}
	}

	if jsonOutput {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printUsage(totalUsage(skinInvoker, classifier))
	}
	if failed == len(args) {
		return errors.New("no image could be analyzed")
	}
	return nil
}

func analyzeImage(ctx context.Context, path string, skinInvoker analysis.Invoker, classifier expression.Classifier) ImageAnalysis {
	res := ImageAnalysis{File: filepath.Base(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	f, err := frame.Decode(data, path)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	out, err := skinInvoker.Invoke(ctx, f)
	if err != nil {
		res.Error = analysis.ErrorMessage(analysis.ModeSkin, err)
		return res
	}
	res.Skin = out.Skin
	res.Tips = skin.Tips(*out.Skin)

	if score, err := beauty.BrightnessScore(f); err == nil {
		res.Brightness = score.String()
	}

	if classifier != nil {
		expr, err := classifier.Classify(ctx, f)
		switch {
		case errors.Is(err, expression.ErrNoFace):
			res.Expression = &expression.Result{Expression: analysis.ExpressionNoFace, Emoji: expression.DefaultEmoji}
		case err != nil:
			fmt.Fprintf(os.Stderr, "%s: expression analysis failed: %v\n", res.File, err)
		default:
			res.Expression = &expr
		}
	}
	return res
}

func printImageAnalysis(res ImageAnalysis) {
	fmt.Printf("%s\n", res.File)
	if res.Error != "" {
		fmt.Printf("  Error: %s\n", res.Error)
		return
	}
	fmt.Printf("  Skin tone:  %s\n", res.Skin.SkinTone)
	fmt.Printf("  Texture:    %s\n", res.Skin.Texture)
	fmt.Printf("  Elasticity: %s\n", res.Skin.Elasticity)
	fmt.Printf("  Hydration:  %s\n", res.Skin.Hydration)
	if res.Brightness != "" {
		fmt.Printf("  Brightness: %s\n", res.Brightness)
	}
	if res.Expression != nil {
		fmt.Printf("  Expression: %s %s\n", res.Expression.Emoji, res.Expression.Expression)
	}
	for _, tip := range res.Tips {
		fmt.Printf("  - %s\n", tip)
	}
}
