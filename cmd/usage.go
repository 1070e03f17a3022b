package cmd

import (
	"fmt"

	"github.com/kozaktomas/frushion/internal/ai"
	"github.com/kozaktomas/frushion/internal/analysis"
)

// totalUsage sums the token usage of every model backed invoker or classifier.
func totalUsage(subjects ...any) ai.Usage {
	var total ai.Usage
	for _, s := range subjects {
		usage, ok := analysis.ReportedUsage(s)
		if !ok {
			continue
		}
		total.InputTokens += usage.InputTokens
		total.OutputTokens += usage.OutputTokens
		total.TotalCost += usage.TotalCost
	}
	return total
}

func printUsage(usage ai.Usage) {
	if usage.InputTokens == 0 && usage.OutputTokens == 0 {
		return
	}
	fmt.Printf("\nAPI Usage:\n")
	fmt.Printf("  Input tokens: %d\n", usage.InputTokens)
	fmt.Printf("  Output tokens: %d\n", usage.OutputTokens)
	fmt.Printf("  Total cost: $%.4f\n", usage.TotalCost)
}
