/*
Package domain holds the vocabulary shared by every part of intake: the
validation rules, their outcomes, the persisted records and the sentinel errors.

It has no dependencies on storage or transport. Adapters translate these types
to their own wire or table formats.
*/
package domain
