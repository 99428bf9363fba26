// Package report writes comparison results to disk.
//
// # Output Layout
//
//	albums/
//	  index.json                 run id, parameters, baselines, summary
//	  animals.json               one record per album
//	  animals.yagiz.m3u          optional playlist per ranking
//	  animals.jpg                optional cover thumbnail
//
// File names come from Slug. Albums whose names slug the same get -2, -3
// suffixes in table order.
//
// # Records
//
// Undefined losses and similarities are written as null so readers can tell
// missing data from a neutral score of 0.
package report
