// Package extract turns uploaded statements into tabular data for review.
//
// Spreadsheets (.csv, .xlsx) are parsed directly. PDFs go through
// pdftotext and images through tesseract; the resulting text is split
// into columns on runs of whitespace. Every extractor funnels its raw
// records through the same cleanup: NFC normalization, header keys in
// snake_case, blank rows dropped and duplicate headers disambiguated.
package extract
