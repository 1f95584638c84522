// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package parser defines account id and name validation.
package parser

import (
	"errors"
	"regexp"
	"strings"
)

const (
	MinAccountIDLen = 2
	MaxAccountIDLen = 64

	// A name becomes the left-most part of the resolver account
	// "<name>.<registry>", so it must leave room for the registry suffix.
	MaxNameLen = 48

	AccountDelimiter = "."
)

var (
	ErrInvalidAccountID = errors.New("account ids must be lowercase alphanumeric parts separated by '.', '-' or '_'")
	ErrInvalidName      = errors.New("names must be ^(([a-z0-9]+[-_])*[a-z0-9]+)$ and at most 48 characters")

	accountReg *regexp.Regexp
	nameReg    *regexp.Regexp
)

func init() {
	accountReg = regexp.MustCompile(`^(([a-z\d]+[\-_])*[a-z\d]+\.)*([a-z\d]+[\-_])*[a-z\d]+$`)
	nameReg = regexp.MustCompile(`^([a-z\d]+[\-_])*[a-z\d]+$`)
}

// CheckAccountID returns an error if the account id format is invalid.
func CheckAccountID(id string) error {
	if len(id) < MinAccountIDLen || len(id) > MaxAccountIDLen {
		return ErrInvalidAccountID
	}
	if !accountReg.MatchString(id) {
		return ErrInvalidAccountID
	}
	return nil
}

// CheckName returns an error if [name] cannot be registered. A name is a
// single account id part (no '.').
func CheckName(name string) error {
	if len(name) == 0 || len(name) > MaxNameLen {
		return ErrInvalidName
	}
	if !nameReg.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}

// IsSubAccount reports whether [child] is a direct sub-account of [parent],
// e.g. "alice.registry" of "registry".
func IsSubAccount(child string, parent string) bool {
	suffix := AccountDelimiter + parent
	if !strings.HasSuffix(child, suffix) {
		return false
	}
	label := strings.TrimSuffix(child, suffix)
	return len(label) > 0 && !strings.Contains(label, AccountDelimiter)
}
