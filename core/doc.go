/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package core provides case analysis on top of the pattern matcher
// in package match.
//
// A Case is an ordered list of Clauses.  Each Clause has a pattern,
// an optional Guard, and a Handler.  The first Clause whose pattern
// matches the subject and whose Guard admits the resulting bindings
// is chosen, and its Handler runs.  If nothing is chosen, the Case's
// Else runs, and without an Else the Case returns a
// *NoMatchingPattern error.  Exhaustiveness is enforced and never
// silently defaulted.
//
// Each clause is attempted with fresh Bindings.  Only the chosen
// clause's bindings are spliced into the caller's scope.
//
// A Destructure is the one-pattern form: it either binds or returns
// *NoMatchingPattern.
//
// A Case can also be written as data (a CaseSpec).  Patterns are
// then pattern documents, and guards and actions are code for an
// Interpreter.  When a CaseSpec is Compiled, the compiler looks up
// each GuardSource's and ActionSource's Interpreter, which should
// know how to Compile and Exec that source.  Ideally that code does
// not block or perform any IO.  An action returns a value and
// perhaps some messages to emit, which a caller can find in the
// Outcome of Case.Run.
package core
