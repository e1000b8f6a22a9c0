// Package evaluation decides how a run proceeds: whether the drafts are good
// enough, whether they have converged, which creatives refine next and which
// artifact is finally selected.
//
// The decision rules are exposed as pure functions (IsQualityReached,
// IsConsensusReached, ParseSelection) so they can be tested and reused
// independently of any model. ModelEvaluator wires them to a model.Model.
package evaluation
