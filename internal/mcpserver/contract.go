package mcpserver

// MarkupFormatContract describes the canonical section marker grammar
// that LLM consumers should follow when authoring annotated source files.
const MarkupFormatContract = `# Perthro Section Markup Contract

Annotated source files embed extractable sections between marker lines.
Everything outside a marker block is ignored by the extractor.

## Structure

` + "```" + `
=pod

Free-form overview text.

=cut

=name example-1
Example #1
=cut
` + "```" + `

## Rules

1. **Markers start at column one.** A marker line is ` + "`" + `=token` + "`" + ` or
   ` + "`" + `=token argument` + "`" + ` where the token is letters, digits, and underscores.
   Indented marker-like lines are ordinary content.
2. **` + "`" + `=cut` + "`" + ` closes the open block.** Every block must be terminated;
   an unterminated block at end of file is dropped.
3. **Bare markers** (` + "`" + `=pod` + "`" + `, ` + "`" + `=head1` + "`" + `) name the section by their token.
   **Grouped markers** (` + "`" + `=name example-1` + "`" + `) put the section in the group
   named by the token; the argument becomes the section name.
4. **Alternate prefix.** ` + "`" + `@=token` + "`" + ` opens a block exactly like ` + "`" + `=token` + "`" + `,
   but only ` + "`" + `@=cut` + "`" + ` closes it. Markers of the other prefix inside the
   block are captured as content.
5. **Escaping.** Inside an open block, a content line that must begin with
   a literal marker is written with a leading ` + "`" + `+` + "`" + `: ` + "`" + `+=head1 WHY?` + "`" + `
   is captured as ` + "`" + `=head1 WHY?` + "`" + `.
6. **Blank edges are trimmed.** Leading and trailing blank lines of a
   block body are removed; interior blank lines are kept.
7. **Opening a block while one is open replaces it.** The pending block
   is discarded, not nested.
8. **Encoding** is UTF-8; both LF and CRLF line endings are accepted.

## Example

` + "```" + `
#!/usr/bin/perl

=pod

This module demonstrates the markup.

+=cut inside a body must be escaped like this line.

=cut

=name usage
perl demo.pl --help
=cut

@=name internals
Visible only to the alternate-prefix extractor profile.
@=cut
` + "```" + `
`
