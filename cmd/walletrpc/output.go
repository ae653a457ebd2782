package main

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/fatih/color"
	"github.com/rodaine/table"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func disableColors() {
	color.NoColor = true
}

func newTable(columns ...interface{}) table.Table {
	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	return table.New(columns...).WithHeaderFormatter(headerFmt)
}

func printField(label string, value interface{}) {
	fmt.Printf("  %s %v\n", cyan(label+":"), value)
}

// formatUnits renders a base-unit hex quantity with the given decimals,
// e.g. wei to ETH. Unparseable input is returned unchanged.
func formatUnits(hexValue string, decimals int) string {
	v, ok := new(big.Int).SetString(strings.TrimPrefix(hexValue, "0x"), 16)
	if !ok {
		return hexValue
	}
	if decimals <= 0 {
		return v.String()
	}
	s := v.String()
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	whole, frac := s[:len(s)-decimals], strings.TrimRight(s[len(s)-decimals:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
