// Package govuk implements the source adapter for UK ministerial and senior
// officials meetings returns published on GOV.UK.
//
// Discovery pages the GOV.UK search API for transparency publications,
// keeps those whose titles describe meetings, and resolves each publication
// through the content API to its CSV attachments. Travel, gifts and
// hospitality returns are skipped. Live search repeats discovery for
// publications inside the recency window and scans their CSVs.
package govuk
