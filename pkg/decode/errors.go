// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package decode

import "fmt"

// ErrorKind classifies why a document failed to decode (spec ยง4.2, ยง7).
type ErrorKind uint8

const (
	// UnknownTag means a discriminant field held a value outside its
	// enumeration (spec ยง3/ยง6).
	UnknownTag ErrorKind = iota
	// WrongField means a required field was absent, or present with the
	// wrong shape, for the given tag.
	WrongField
	// SortMismatch means a binary operator's operands disagree in sort
	// (e.g. comparing a Num to a Shape).
	SortMismatch
	// IndexOutOfRange means a hard/path/soft index fell outside [0,
	// len(ctrPool)).
	IndexOutOfRange
	// NonInteger names a value used as a dim, rank, index or Forall bound
	// that is not an integer. Decode never returns this kind: it does not
	// check integrality, so a float dim, rank or bound passes decoding and
	// is rejected later by pkg/smtenc (RealInIntOp or NonIntRange).
	NonInteger
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownTag:
		return "UnknownTag"
	case WrongField:
		return "WrongField"
	case SortMismatch:
		return "SortMismatch"
	case IndexOutOfRange:
		return "IndexOutOfRange"
	case NonInteger:
		return "NonInteger"
	default:
		return "?"
	}
}

// Error reports a malformed document.  Path is a JSON-pointer-ish
// description of where in the document the problem was found (e.g.
// "paths[2].ctrPool[5].left"), so a caller can locate the offending node
// without re-scanning the whole document.
type Error struct {
	Kind    ErrorKind
	Path    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("decode: %s at %s: %s", e.Kind, e.Path, e.Message)
}

func errAt(kind ErrorKind, path, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)}
}
