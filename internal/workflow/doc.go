// Package workflow coordinates catalog processing across the pipeline stages.
// A manager runs two lanes: the foreground lane moves images through analysis,
// generation, and curation, while the background lane handles embedding,
// export, and marketplace upload. Each lane polls the catalog for work,
// maintains heartbeats for in-flight items, and reclaims items whose
// heartbeats have gone stale.
package workflow
