// Package incfile generates Balmorel geographic set files from a snapshot.
//
// # Overview
//
// Balmorel models geography as three nested GAMS sets: countries (CCC),
// regions (RRR) and areas (AAA). A snapshot's labels and connections map
// onto them directly:
//
//	CCC.inc        SET CCC(CCCRRRAAA) 'All countries'
//	RRR.inc        SET RRR(CCCRRRAAA) 'All regions'
//	AAA.inc        SET AAA(CCCRRRAAA) 'All areas'
//	CCCRRRAAA.inc  SET CCCRRRAAA 'All geographic entities'
//	CCCRRR.inc     SET CCCRRR(CCC, RRR) 'Regions in countries'
//	RRRAAA.inc     SET RRRAAA(RRR, AAA) 'Areas in regions'
//
// Every file uses the same layout: the declaration line, a "/" line, one
// element (or "A . B" pair) per line, a closing "/" and ";".
//
// # Usage
//
//	b, err := incfile.Generate(s, incfile.Options{})
//	if err != nil { ... }
//	err = incfile.WriteDir("Output", b)
//
// Elements that GAMS cannot read unquoted are wrapped in single quotes (or
// double quotes when the label contains a single quote). Labels that cannot
// be quoted at all are rejected with an INVALID_LABEL error.
package incfile
