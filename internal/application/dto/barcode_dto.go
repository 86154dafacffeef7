package dto

// DecodedBarcodeResponse resultado del decodificador.
type DecodedBarcodeResponse struct {
	RawProductCode        string `json:"raw_product_code"`
	NormalizedProductCode string `json:"normalized_product_code"`
	LotNumber             string `json:"lot_number"`
	ExpiryDate            string `json:"expiry_date"`
	Format                string `json:"format"`
}

// ScanRequest query de GET /api/barcodes/resolve. Los hints completan lo que el escaneo no trae.
type ScanRequest struct {
	Raw         string `query:"raw" json:"barcode"`
	ProductCode string `query:"product_code" json:"product_code"`
	LotNumber   string `query:"lot_number" json:"lot_number"`
	ExpiryDate  string `query:"expiry_date" json:"expiry_date"`
}

// ResolveResponse producto y lote resueltos.
type ResolveResponse struct {
	Decoded     *DecodedBarcodeResponse `json:"decoded,omitempty"`
	Product     ProductResponse         `json:"product"`
	Lot         *LotResponse            `json:"lot,omitempty"`
	MatchedCode string                  `json:"matched_code,omitempty"`
	ByLot       bool                    `json:"resolved_by_lot"`
}
