package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-control/internal/application/dto"
	"github.com/jhoicas/stock-control/internal/application/scan"
	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/entity"
	"github.com/jhoicas/stock-control/internal/domain/repository"
)

// Etiquetas de estado de calidad de un lote.
const (
	QCLabelPass    = "Pass"
	QCLabelFail    = "Fail"
	QCLabelPending = "Pending"
	QCLabelWaiting = "Waiting for QC"
)

// QualityUseCase controles de calidad sobre lotes.
type QualityUseCase struct {
	checks   repository.QualityCheckRepository
	lots     repository.StockLotRepository
	balances repository.LocationBalanceRepository
	scanner  *scan.UseCase
	caps     domain.Capabilities
}

// NewQualityUseCase construye el caso de uso.
func NewQualityUseCase(
	checks repository.QualityCheckRepository,
	lots repository.StockLotRepository,
	balances repository.LocationBalanceRepository,
	scanner *scan.UseCase,
	caps domain.Capabilities,
) *QualityUseCase {
	return &QualityUseCase{checks: checks, lots: lots, balances: balances, scanner: scanner, caps: caps}
}

// Create registra un control. Con resultado queda completado y firmado por quien lo registra.
func (uc *QualityUseCase) Create(ctx context.Context, userID string, in dto.CreateQualityCheckRequest) (*dto.QualityCheckResponse, error) {
	if !uc.caps.Enabled(domain.ModuleQualityControl) {
		return nil, domain.ErrModuleDisabled
	}
	if in.LotID == "" || in.TestReference == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	switch in.Result {
	case "", entity.QCResultPass, entity.QCResultFail:
	default:
		return nil, domain.ErrInvalidInput
	}
	lot, err := uc.lots.GetByID(ctx, in.LotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrLotNotFound
	}
	now := time.Now()
	check := &entity.QualityCheck{
		ID:            uuid.New().String(),
		LotID:         lot.ID,
		PerformedBy:   userID,
		Status:        entity.QCStatusPending,
		TestReference: in.TestReference,
		Result:        in.Result,
		Notes:         in.Notes,
		CreatedAt:     now,
	}
	if in.Result != "" {
		check.Status = entity.QCStatusCompleted
		check.SignedOffBy = &userID
		check.SignedOffAt = &now
	}
	if err := uc.checks.Create(ctx, check); err != nil {
		return nil, err
	}
	out := dto.FromQualityCheck(check)
	return &out, nil
}

// LotStatus lotes con existencias del producto escaneado o elegido y su último estado de calidad.
func (uc *QualityUseCase) LotStatus(ctx context.Context, in scan.ScanInput) (*dto.ProductQCStatusResponse, error) {
	if !uc.caps.Enabled(domain.ModuleQualityControl) {
		return nil, domain.ErrModuleDisabled
	}
	interp, err := uc.scanner.Interpret(in)
	if err != nil {
		return nil, err
	}
	// Se listan todos los lotes del producto, no solo el escaneado.
	q := interp.Query
	q.LotNumber, q.Expiry = "", nil
	res, err := uc.scanner.Resolve(ctx, q)
	if err != nil {
		return nil, err
	}

	lots, err := uc.lots.ListByProduct(ctx, res.Product.ID, repository.LotFilter{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(lots, func(i, j int) bool {
		if lots[i].LotNumber != lots[j].LotNumber {
			return lots[i].LotNumber < lots[j].LotNumber
		}
		return lots[i].ExpiryDate.Before(lots[j].ExpiryDate)
	})

	ids := make([]string, 0, len(lots))
	for _, l := range lots {
		ids = append(ids, l.ID)
	}
	latest, err := uc.checks.LatestByLots(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := &dto.ProductQCStatusResponse{Product: dto.FromProduct(res.Product), Lots: []dto.LotQCStatusResponse{}}
	for _, l := range lots {
		effective, err := uc.effectiveStock(ctx, l)
		if err != nil {
			return nil, err
		}
		if !effective.IsPositive() {
			continue
		}
		out.Lots = append(out.Lots, dto.LotQCStatusResponse{Lot: dto.FromLot(l), QCStatus: qcLabel(latest[l.ID])})
	}
	return out, nil
}

// effectiveStock stock del lote; si es cero, lo que quede asignado a ubicaciones
// (solo con el módulo de ubicaciones activo).
func (uc *QualityUseCase) effectiveStock(ctx context.Context, lot *entity.StockLot) (decimal.Decimal, error) {
	if lot.CurrentStock.IsPositive() || !uc.caps.Enabled(domain.ModuleLocationTracking) || uc.balances == nil {
		return lot.CurrentStock, nil
	}
	balances, err := uc.balances.ListByLot(ctx, lot.ID)
	if err != nil {
		return decimal.Zero, err
	}
	located := decimal.Zero
	for _, b := range balances {
		located = located.Add(b.Quantity)
	}
	return located, nil
}

func qcLabel(check *entity.QualityCheck) string {
	switch {
	case check == nil:
		return QCLabelWaiting
	case check.Result == entity.QCResultPass:
		return QCLabelPass
	case check.Result == entity.QCResultFail:
		return QCLabelFail
	default:
		return QCLabelPending
	}
}
