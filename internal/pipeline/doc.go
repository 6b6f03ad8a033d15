// Package pipeline orchestrates a full batch run.
//
// A run has three phases: retrieve every manifest item into a deterministic
// directory tree under the work root, archive the tree as a single zip in
// the output directory, and split that zip into raw byte-range parts when
// it exceeds the size ceiling. Item-level fetch failures never abort a run;
// they are carried through to the final report.
package pipeline
