// Package tools implements the fixed tool registry and the textual
// tool-call directive grammar the agent parses from model output.
//
// The wire format is deliberately the plain-text variant:
//
//	TOOL_CALL: name(k1=v1, k2="v 2")
//
// one or more per model output. Tool names are case-sensitive; values may
// be quoted; numeric values are parsed per the tool's declared parameter
// types. There is no native function-calling negotiation here.
package tools
