// Package mdconfig extracts prompt configuration from markdown prompt files.
//
// A prompt file carries settings in a ```json fenced block at the very top of
// the document and prompt bodies under headings whose titles fuzzily match
// "User Prompt" and "System Prompt" ("# user_prompt", "## USER-PROMPT" and
// "# UserPrompt" are all equivalent). [Parser.Parse] runs both extractions,
// normalizes the JSON settings with [Normalize], lets heading text replace any
// prompt keys from the JSON block, and merges the result with user-level
// defaults through a [ResolveFunc] ([Resolve] by default).
//
// Content problems never produce errors: an unparsable JSON block is treated
// as an empty object and a missing section as empty text. Only [ParseFile]
// can fail, when the file cannot be read.
//
// [LocateSection] is the heading scanner. A section runs from a matching
// heading to the next heading of the same or a higher level; deeper headings
// stay inside the section.
package mdconfig
