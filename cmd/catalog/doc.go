// Package catalog provides the string transforms used when authoring catalog
// entities: URL slugs, attribute machine keys, SKU assembly, and variant
// expansion over attribute value axes.
//
// Slug and AttributeKey are idempotent: applying them to already-normalized
// input returns the input unchanged. Callers rely on this to safely
// re-normalize values coming back from the API.
package catalog
