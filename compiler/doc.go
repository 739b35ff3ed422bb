/*
Package compiler turns AICA DSP effect source into MPRO assembly.

Process of compilation

	Source Text ->
		pre ->
	Preprocessed Lines (macros expanded, comments blanked) ->
		gen ->
	Steps + Coefficients + MADRS lines ->
		opt (hoist loads, trickle down, drop nop pairs) ->
	Steps ->
		format ->
	Assembly Text

Assembly Text ->
	assemble (not here) ->
DSP Registers
*/
package compiler
