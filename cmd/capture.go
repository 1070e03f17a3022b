package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kozaktomas/frushion/internal/analysis"
	"github.com/kozaktomas/frushion/internal/beauty"
	"github.com/kozaktomas/frushion/internal/config"
	"github.com/kozaktomas/frushion/internal/database"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Run the capture loop against a camera source",
	Long: `Read frames from a camera source and analyze them without the web UI.

The source is a directory of images replayed in order (--source dir --path)
or the JPEG snapshot endpoint of an IP camera (--source snapshot --url).
Every rendered round is printed; rounds that are still in flight when the
trigger fires again are skipped.

Examples:
  # Analyze skin on 5 frames of a directory, one per second
  frushion capture --path ./frames --interval 1s --count 5

  # Expression analysis through OpenAI, results saved to the database
  frushion capture --mode expression --expression openai --save

  # Golden ratio score through the remote analysis service
  frushion capture --mode score --remote --landmarks '[[0,0],[1,0],[0,1],[0,2],[1,2]]'

  # JSON output for scripting
  frushion capture --trigger manual --count 3 --json`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().String("source", "", "Camera source: dir or snapshot (default CAMERA_SOURCE)")
	captureCmd.Flags().String("path", "", "Image directory of the dir source (default CAMERA_DIR)")
	captureCmd.Flags().String("url", "", "Snapshot URL of the snapshot source (default CAMERA_SNAPSHOT_URL)")
	captureCmd.Flags().String("trigger", "", "Trigger: interval, continuous or manual (default CAPTURE_TRIGGER)")
	captureCmd.Flags().Duration("interval", 0, "Period of the interval trigger (default CAPTURE_INTERVAL)")
	captureCmd.Flags().Int("fps", 0, "Frame rate of the continuous trigger (default CAPTURE_FPS)")
	captureCmd.Flags().Int("count", 1, "Number of rounds to run, 0 runs until interrupted")
	captureCmd.Flags().String("mode", "", "Analysis mode: skin, expression, score or brightness (default CAPTURE_MODE)")
	captureCmd.Flags().String("expression", "", "Expression provider (default EXPRESSION_PROVIDER)")
	captureCmd.Flags().String("skin", "", "Skin source: frame, random or an AI provider (default SKIN_SOURCE)")
	captureCmd.Flags().String("landmarks", "", "Face landmarks for score mode as a JSON array of [x,y] points")
	captureCmd.Flags().Bool("remote", false, "Send score and brightness rounds to ANALYSIS_SERVICE_URL")
	captureCmd.Flags().Bool("save", false, "Save every rendered result")
	captureCmd.Flags().Bool("json", false, "Output as JSON lines instead of a progress bar")
}

// captureSource applies the source flags on top of the camera configuration.
func captureSource(cmd *cobra.Command, cam config.CameraConfig) config.CameraConfig {
	if s := mustGetString(cmd, "source"); s != "" {
		cam.Source = s
	}
	if p := mustGetString(cmd, "path"); p != "" {
		cam.Dir = p
		if mustGetString(cmd, "source") == "" {
			cam.Source = "dir"
		}
	}
	if u := mustGetString(cmd, "url"); u != "" {
		cam.SnapshotURL = u
		if mustGetString(cmd, "source") == "" {
			cam.Source = "snapshot"
		}
	}
	return cam
}

// captureTrigger applies the trigger flags on top of the capture configuration.
func captureTrigger(cmd *cobra.Command, capture config.CaptureConfig) (analysis.Trigger, error) {
	kind := capture.Trigger
	if t := mustGetString(cmd, "trigger"); t != "" {
		kind = t
	}
	interval := capture.Interval
	if d := mustGetDuration(cmd, "interval"); d > 0 {
		interval = d
	}
	if interval <= 0 {
		mode := capture.Mode
		if m := mustGetString(cmd, "mode"); m != "" {
			mode = m
		}
		interval = analysis.DefaultInterval(mode)
	}
	fps := capture.FrameRate
	if f := mustGetInt(cmd, "fps"); f > 0 {
		fps = f
	}
	return analysis.ParseTrigger(kind, interval, fps)
}

func parseLandmarks(s string) ([]beauty.Point, error) {
	if s == "" {
		return nil, nil
	}
	var points []beauty.Point
	if err := json.Unmarshal([]byte(s), &points); err != nil {
		return nil, fmt.Errorf("invalid landmarks: %w", err)
	}
	return points, nil
}

func runCapture(cmd *cobra.Command, args []string) error {
	count := mustGetInt(cmd, "count")
	jsonOutput := mustGetBool(cmd, "json")
	save := mustGetBool(cmd, "save")
	if count < 0 {
		return errors.New("--count must not be negative")
	}

	ctx := context.Background()
	cfg := config.Load()

	trigger, err := captureTrigger(cmd, cfg.Capture)
	if err != nil {
		return err
	}
	landmarks, err := parseLandmarks(mustGetString(cmd, "landmarks"))
	if err != nil {
		return err
	}
	invoker, err := analysis.NewInvoker(ctx, cfg, analysis.InvokerOptions{
		Mode:       mustGetString(cmd, "mode"),
		Expression: mustGetString(cmd, "expression"),
		Skin:       mustGetString(cmd, "skin"),
		Remote:     mustGetBool(cmd, "remote"),
		Landmarks:  landmarks,
	})
	if err != nil {
		return err
	}
	source, err := analysis.NewSource(captureSource(cmd, cfg.Camera))
	if err != nil {
		return err
	}

	opts := analysis.Options{Trigger: trigger}
	var session *analysis.Session
	if save {
		closeStorage, err := initStorage(cfg, jsonOutput)
		if err != nil {
			return err
		}
		defer closeStorage()

		writer, err := database.GetAnalysisWriter(ctx)
		if err != nil {
			return err
		}
		opts.OnResult = func(ctx context.Context, _ uint64, out analysis.Outcome) {
			record := database.NewStoredAnalysis(session.ID(), session.Mode(), out.Skin, out.Expression, out.Score)
			if err := writer.Save(ctx, record); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to save result: %v\n", err)
			}
		}
	}
	session = analysis.NewSession(source, invoker, opts)

	events := session.AddListener()
	defer session.RemoveListener(events)

	if !jsonOutput {
		fmt.Printf("Capturing from %s source, %s analysis, trigger %s\n", source.Name(), session.Mode(), trigger)
	}
	if err := session.Start(ctx); err != nil {
		fmt.Println(session.State().Message)
		return err
	}
	defer session.Close()

	var bar *progressbar.ProgressBar
	if !jsonOutput {
		total := count
		if total == 0 {
			total = -1 // spinner until interrupted
		}
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Analyzing frames"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("frames"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
		)
	}

	report := func(st analysis.State) {
		if jsonOutput {
			data, _ := json.Marshal(st)
			fmt.Println(string(data))
			return
		}
		bar.Clear()
		fmt.Println(formatState(st))
		bar.Add(1)
	}

	var results []analysis.State
	if trigger.Kind == analysis.TriggerManual {
		rounds := count
		if rounds == 0 {
			rounds = 1
		}
		for range rounds {
			_, err := session.RunOnce(ctx)
			if errors.Is(err, analysis.ErrClosed) {
				break
			}
			st := session.State()
			results = append(results, st)
			report(st)
		}
	} else {
		results = waitForRounds(session, events, count, report)
	}

	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	if err := session.Close(); err != nil {
		return err
	}

	if !jsonOutput {
		st := session.State()
		fmt.Printf("Completed: %d, failed: %d, skipped: %d, stale: %d\n",
			st.Stats.Completed, st.Stats.Failed, st.Stats.Skipped, st.Stats.Stale)
		printUsage(totalUsage(invoker))
	}
	if len(results) == 0 {
		return errors.New("no analysis round completed")
	}
	return nil
}

// waitForRounds collects rendered rounds of a running session until count rounds were rendered
// (0 means forever) or the process is interrupted.
func waitForRounds(session *analysis.Session, events chan analysis.Event, count int, report func(analysis.State)) []analysis.State {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var results []analysis.State
	var lastSeq uint64
	for {
		select {
		case <-sigChan:
			return results
		case ev, ok := <-events:
			if !ok || ev.Type == analysis.EventClosed {
				return results
			}
			st, isState := ev.Data.(analysis.State)
			if ev.Type != analysis.EventState || !isState || st.Sequence == lastSeq {
				continue
			}
			lastSeq = st.Sequence
			results = append(results, st)
			report(st)
			if count > 0 && len(results) >= count {
				return results
			}
		}
	}
}

// formatState renders the mode specific part of a state as one line.
func formatState(st analysis.State) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d ", st.Sequence)
	switch st.Mode {
	case analysis.ModeSkin:
		fmt.Fprintf(&sb, "tone %s, texture %s, elasticity %s, hydration %s",
			st.Skin.SkinTone, st.Skin.Texture, st.Skin.Elasticity, st.Skin.Hydration)
	case analysis.ModeExpression:
		fmt.Fprintf(&sb, "%s %s", st.Emoji, st.Expression)
		if st.ExpressionMessage != "" {
			fmt.Fprintf(&sb, " (%s)", st.ExpressionMessage)
		}
	default:
		fmt.Fprintf(&sb, "score %s", st.Score)
	}
	if st.Message != "" {
		fmt.Fprintf(&sb, " - %s", st.Message)
	}
	for _, tip := range st.Tips {
		fmt.Fprintf(&sb, "\n    %s", tip)
	}
	return sb.String()
}
