package cli

import (
	"fmt"
	"io"

	"github.com/easyeats/easyeats/internal/spoonacular"
)

// PrintSummaries writes one numbered line per search result.
func PrintSummaries(out io.Writer, results []spoonacular.Summary) {
	for i, r := range results {
		fmt.Fprintf(out, "%3d. %8d  %-50s  %3d min  %.1f\n", i+1, r.ID, r.Title, r.ReadyInMinutes, r.Rating())
	}
}

// PrintDetails writes the full recipe: header, ingredients and steps.
func PrintDetails(out io.Writer, d spoonacular.Details) {
	fmt.Fprintf(out, "%s (%d)\n", d.Title, d.ID)
	fmt.Fprintf(out, "ready in %d min, serves %d\n", d.ReadyInMinutes, d.Servings)
	if len(d.Ingredients) > 0 {
		fmt.Fprintln(out, "\ningredients:")
		for _, ing := range d.Ingredients {
			fmt.Fprintf(out, "  - %g %s %s\n", ing.Amount, ing.Unit, ing.Name)
		}
	}
	if len(d.Steps) > 0 {
		fmt.Fprintln(out, "\nsteps:")
		for i, step := range d.Steps {
			fmt.Fprintf(out, "  %d. %s\n", i+1, step)
		}
	}
}
