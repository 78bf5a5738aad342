// Command promptmd reads markdown prompt files (.gpt.md) and resolves the
// model settings and prompt sections they carry.
//
// Usage:
//
//	promptmd parse [file|dir]...     resolve and print prompt configs
//	promptmd list [dir]...           list prompt files
//	promptmd outline <file>          print the heading outline
//	promptmd check [--strict] ...    lint prompt files
//	promptmd run <file> [--var k=v]  send a prompt to its model
//	promptmd serve [--addr host:port]
//	promptmd config init|set|show
//	promptmd cache clear|show
//	promptmd models list|doctor
//	promptmd hook install|uninstall
//	promptmd version
//
// Configuration is read from $XDG_CONFIG_HOME/promptmd/config.json, a
// promptmd.config.{json,yaml,yml} in the project directory, PROMPTMD_*
// environment variables and flags, in increasing order of precedence.
package main
