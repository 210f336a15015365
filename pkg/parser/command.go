package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// BridgeArgs are the parsed arguments of a bridge command.
type BridgeArgs struct {
	Amount      string
	TokenSymbol string
}

var amountPattern = regexp.MustCompile(`^\d+\.?\d*$`)

// ParseBridgeArgs parses "<amount> [token]" command arguments.
// Examples:
//   - "10"
//   - "2.5 USDC"
func ParseBridgeArgs(args []string) (*BridgeArgs, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("amount is required. Expected: 'bridge <amount> [token]' (e.g., 'bridge 10 USDC')")
	}

	amount := strings.TrimSpace(args[0])
	if !amountPattern.MatchString(amount) {
		return nil, fmt.Errorf("invalid amount %q: expected a positive decimal number", amount)
	}
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil || value <= 0 {
		return nil, fmt.Errorf("invalid amount %q: must be greater than zero", amount)
	}

	parsed := &BridgeArgs{Amount: amount}
	if len(args) > 1 {
		parsed.TokenSymbol = NormalizeTokenSymbol(args[1])
	}
	return parsed, nil
}

// NormalizeTokenSymbol normalizes token symbols to standard format
func NormalizeTokenSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))

	aliases := map[string]string{
		"USDXM": "USDC", // staging test token bridges as USDC
	}
	if normalized, exists := aliases[symbol]; exists {
		return normalized
	}
	return symbol
}
