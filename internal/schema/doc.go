// Package schema derives OpenAPI component schemas from a resolved plan so
// that documentation agrees with the rewritten tags: a nullable field accepts
// null, a not-required field may be missing.
//
// Builder implements plan.SchemaSink. Attach it with Resolver.WithSchemaSink
// and read the components with Builder.Schemas once Resolve returns.
package schema
