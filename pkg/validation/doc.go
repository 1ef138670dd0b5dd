/*
Package validation implements the report file checks and the pipeline that
records their outcomes.

A file is first matched against its declared type, then checked for a clean
name and a bounded size, parsed into a Table and finally checked for the
expected header row, missing cells and empty rows. Every outcome is written
to a ports.ResultStore as soon as it is known, so a rejected upload still
leaves a complete trail of what was checked.
*/
package validation
