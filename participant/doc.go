// Package participant holds the catalog of responders taking part in a run.
//
// A participant is an immutable Config: an id (also used as the sender id in
// the transcript), a closed Role that decides how prompts are composed, a
// role prompt used as system instructions, a human readable description and a
// display tag consumed by renderers. Configs are kept in an ordered Registry;
// a Lineup names which ids play the analyst, coordinator and creative parts
// of the advanced pipeline.
//
// Catalogs can be declared in YAML and loaded with LoadCatalog.
package participant
