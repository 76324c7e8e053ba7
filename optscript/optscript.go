// Package optscript parses compact option strings like
//
//	ratio=0.5 error=0.01 uv_weight=1.5 lock_border
//
// into simplification options. The same syntax serves the -opts flag,
// the yaml config default and the ?opts= query parameter.
package optscript

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/mogaika/mesh_simplifier/simplify"
)

const (
	TOKEN_KEY = iota
	TOKEN_ASSIGN
	TOKEN_NUMBER
	TOKEN_COMMENT
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`[a-zA-Z_][a-zA-Z0-9_]*`), getToken(TOKEN_KEY))
	lexer.Add([]byte(`=`), getToken(TOKEN_ASSIGN))
	lexer.Add([]byte(`[\+\-]?[0-9]*\.?[0-9]+`), getToken(TOKEN_NUMBER))
	lexer.Add([]byte(`#[^\n]*`), getToken(TOKEN_COMMENT))
	lexer.Add([]byte(`\s+`), skip)
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
	return nil, nil
}

func applyValue(opts *simplify.Options, key string, value float64, line int) error {
	switch key {
	case "target", "target_index_count":
		opts.TargetIndexCount = int(value)
	case "ratio", "target_ratio":
		opts.TargetRatio = float32(value)
	case "error", "target_error":
		opts.TargetError = float32(value)
	case "uv_weight":
		opts.UVWeight = float32(value)
	default:
		return errors.Errorf("Unknown option %q on line %v", key, line)
	}
	return nil
}

func applyFlag(opts *simplify.Options, key string, line int) error {
	switch key {
	case "lock_border":
		opts.LockBorder = true
	case "absolute_error", "error_is_absolute":
		opts.ErrorIsAbsolute = true
	default:
		return errors.Errorf("Option %q on line %v requires a value", key, line)
	}
	return nil
}

// ParseOptions scans an option string into Options on top of the given
// defaults.
func ParseOptions(text string, defaults simplify.Options) (simplify.Options, error) {
	opts := defaults

	scanner, err := lexer.Scanner([]byte(text))
	if err != nil {
		return opts, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	var pendingKey *lexmachine.Token
	var assignSeen bool
	for Itok, err, eos := scanner.Next(); !eos; Itok, err, eos = scanner.Next() {
		if err != nil {
			return opts, errors.Wrapf(err, "Failed to parse token")
		}
		tok := Itok.(*lexmachine.Token)

		switch tok.Type {
		case TOKEN_KEY:
			if pendingKey != nil {
				if assignSeen {
					return opts, errors.Errorf("Option %q on line %v is missing a value", string(pendingKey.Lexeme), pendingKey.StartLine)
				}
				if err := applyFlag(&opts, string(pendingKey.Lexeme), pendingKey.StartLine); err != nil {
					return opts, err
				}
			}
			pendingKey = tok
			assignSeen = false
		case TOKEN_ASSIGN:
			if pendingKey == nil || assignSeen {
				return opts, errors.Errorf("Unexpected '=' on line %v", tok.StartLine)
			}
			assignSeen = true
		case TOKEN_NUMBER:
			if pendingKey == nil || !assignSeen {
				return opts, errors.Errorf("Unexpected number %q on line %v", string(tok.Lexeme), tok.StartLine)
			}
			value, err := strconv.ParseFloat(string(tok.Lexeme), 64)
			if err != nil {
				return opts, errors.Errorf("Unknown number format on line %v (%q)", tok.StartLine, tok.Lexeme)
			}
			if err := applyValue(&opts, string(pendingKey.Lexeme), value, pendingKey.StartLine); err != nil {
				return opts, err
			}
			pendingKey = nil
			assignSeen = false
		case TOKEN_COMMENT:
		}
	}

	if pendingKey != nil {
		if assignSeen {
			return opts, errors.Errorf("Option %q on line %v is missing a value", string(pendingKey.Lexeme), pendingKey.StartLine)
		}
		if err := applyFlag(&opts, string(pendingKey.Lexeme), pendingKey.StartLine); err != nil {
			return opts, err
		}
	}

	return opts, nil
}
