package document

// Well-known metadata keys. Metadata stays a semi-structured map because
// source and domain fields vary by document type; these constants name the
// keys the pipeline itself reads or writes.
const (
	// MetaSource is the legacy source key kept for filter compatibility.
	MetaSource = "source"
	// MetaSourceType is one of "txt", "csv", "pdf", "pdf_ocr", "docx".
	MetaSourceType = "source_type"
	// MetaFileName is the base name of the source file.
	MetaFileName = "file_name"
	// MetaPath is the full path of the source file.
	MetaPath = "path"
	// MetaFileFingerprint groups chunks of the same source file for
	// replace-on-reingest deletion.
	MetaFileFingerprint = "file_fingerprint"
	// MetaRowIndex is the 1-based CSV row the chunk came from.
	MetaRowIndex = "row_index"
	// MetaChunkIndex is the 0-based chunk position within its logical unit.
	MetaChunkIndex = "chunk"
	// MetaChunkCharCount is the chunk length in characters before labeling.
	MetaChunkCharCount = "chunk_char_count"
	// MetaUsedOCR marks chunks whose text came from the OCR fallback.
	MetaUsedOCR = "used_ocr"
	// MetaOCRDPI records the render resolution used for OCR.
	MetaOCRDPI = "ocr_dpi"
	// MetaOCRLang records the OCR language.
	MetaOCRLang = "ocr_lang"
	// MetaIngestedAt is the UTC RFC 3339 ingestion timestamp.
	MetaIngestedAt = "ingested_at"
	// MetaIngestRun identifies the ingestion run that produced the chunk.
	MetaIngestRun = "ingest_run"
)

// Domain metadata keys carried from CSV columns when present.
const (
	MetaJurisdiction  = "jurisdiction"
	MetaRiskLevel     = "risk_level"
	MetaEffectiveDate = "effective_date"
	MetaCategory      = "category"
	MetaDocType       = "doc_type"
)

// Source type values.
const (
	SourceTypeTxt    = "txt"
	SourceTypeCSV    = "csv"
	SourceTypePDF    = "pdf"
	SourceTypePDFOCR = "pdf_ocr"
	SourceTypeDOCX   = "docx"
)
