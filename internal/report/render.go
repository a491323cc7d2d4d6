package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const timeLayout = "2006-01-02 15:04:05 UTC"

// WriteTable prints the console report: one row per instrument, sorted as
// assembled, with the summary footer the old screener printed.
func WriteTable(w io.Writer, r *Report) {
	line := strings.Repeat("=", 130)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "Sorted by 30-Day Change % (Descending)")
	fmt.Fprintf(w, "Generated: %s\n", r.GeneratedAt.UTC().Format(timeLayout))
	fmt.Fprintln(w, line)

	fmt.Fprintf(w, "%-12s %12s %10s %10s %10s %8s %8s %12s %8s %5s\n",
		"Symbol", "Price", "MCap", "FDV", "24h Vol", "D1%", "30D%", "Low", "Bounce", "New")
	fmt.Fprintf(w, "%-12s %12s %10s %10s %10s %8s %8s %12s %8s %5s\n",
		"", "(USD)", "(M)", "(M)", "(M)", "", "", "(USD)", "(%)", "")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for _, row := range r.Rows {
		mcap := "N/A"
		if row.MarketCap != nil && *row.MarketCap > 0 {
			mcap = fmt.Sprintf("$%.0fM", *row.MarketCap/1_000_000)
		}
		fdv := "N/A"
		if row.FDV != nil {
			fdv = fmt.Sprintf("$%.0fM", *row.FDV/1_000_000)
		}
		d30 := "N/A"
		if row.Change30d != nil {
			d30 = fmt.Sprintf("%+.1f%%", *row.Change30d)
		}
		low, bounce := "N/A", "N/A"
		if row.Low != nil {
			low = formatPrice(*row.Low)
			if row.Bounce != nil {
				bounce = fmt.Sprintf("+%.0f%%", *row.Bounce)
			}
		}
		isNew := ""
		if row.IsNew {
			isNew = "NEW"
		}

		fmt.Fprintf(w, "%-12s %12s %10s %10s %10s %8s %8s %12s %8s %5s\n",
			row.Symbol,
			formatPrice(row.Price),
			mcap,
			fdv,
			fmt.Sprintf("$%.0fM", row.Volume24h/1_000_000),
			fmt.Sprintf("%+.1f%%", row.Change24h),
			d30,
			low,
			bounce,
			isNew)
	}

	fmt.Fprintln(w, strings.Repeat("-", 130))
	fmt.Fprintf(w, "Total: %d instruments | New this run: %d\n", len(r.Rows), len(r.NewSymbols))
	fmt.Fprintln(w, line)
}

// Prices under a dollar keep four decimals, everything else two.
func formatPrice(v float64) string {
	if v < 1 {
		return fmt.Sprintf("$%.4f", v)
	}
	return fmt.Sprintf("$%.2f", v)
}

// WriteDataJS emits the structured literals the static HTML dashboard embeds:
// generation timestamp, the new-symbol set, the instrument dataset, tier
// metadata and the annotation map. Nullable fields render as null.
func WriteDataJS(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "const reportGeneratedAt = %q;\n", r.GeneratedAt.UTC().Format(timeLayout))

	newList, err := json.Marshal(r.NewSymbols)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "const newCoins = new Set(%s);\n", newList)

	fmt.Fprintln(w, "const cryptoData = [")
	for _, row := range r.Rows {
		mcapM, fdvM := 0.0, 0.0
		if row.MarketCap != nil {
			mcapM = *row.MarketCap / 1_000_000
		}
		if row.FDV != nil {
			fdvM = *row.FDV / 1_000_000
		}
		fmt.Fprintf(w,
			"    { symbol: %q, tier: %q, price: %s, mcap: %.0f, fdv: %.0f, volume: %.1f, d1: %.2f, d30: %s, low: %s, lowDate: %s, bounce: %s, isNew: %t },\n",
			row.Symbol,
			row.TierID,
			jsNumber(row.Price),
			mcapM,
			fdvM,
			row.Volume24h/1_000_000,
			row.Change24h,
			jsNullable2(row.Change30d),
			jsNullableRaw(row.Low),
			jsNullableString(row.LowDate),
			jsNullable2(row.Bounce),
			row.IsNew)
	}
	fmt.Fprintln(w, "];")

	fmt.Fprintln(w, "const tierMeta = [")
	for _, tier := range r.Tiers {
		fresh, err := json.Marshal(emptyAsList(tier.NewSymbols))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "    { id: %q, name: %q, label: %q, count: %d, newCoins: %s },\n",
			tier.ID, tier.Name, tier.Label, tier.Count, fresh)
	}
	fmt.Fprintln(w, "];")

	notes, err := json.Marshal(r.Annotations)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "const coinNotes = %s;\n", notes)
	return nil
}

func jsNumber(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.8f", v), "0"), ".")
}

func jsNullableRaw(v *float64) string {
	if v == nil {
		return "null"
	}
	return jsNumber(*v)
}

func jsNullable2(v *float64) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%.2f", *v)
}

func jsNullableString(s string) string {
	if s == "" {
		return "null"
	}
	return fmt.Sprintf("%q", s)
}

func emptyAsList(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
