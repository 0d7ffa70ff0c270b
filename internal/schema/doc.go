/*
Package schema pairs attribute names with their AttributeType and loads stored
schema and attribute rows back into domain values.

Stored type names and stored values are never trusted: every row goes through
domain.ParseAttributeType and AttributeType.Validate on the way in. What happens
to a row that fails is decided by LoaderConfig.Strict:

  - strict (default): the first failure aborts the load
  - lenient: the failed row is skipped and logged, the rest of the batch
    loads, and all failures are returned joined

Lenient loads stop after LoaderConfig.MaxErrors failures.
*/
package schema
