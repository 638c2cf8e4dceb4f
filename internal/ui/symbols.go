package ui

// Glyphs used across panels.
const (
	SymbolCollapsed = "[+]"
	SymbolExpanded  = "[-]"
	SymbolDown      = "▼"
	SymbolUp        = "▲"
	SymbolWarning   = "!"
)
