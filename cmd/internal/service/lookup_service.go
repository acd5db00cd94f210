package service

import (
	"context"
	"errors"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/infrastructure/minhareceita"
	"gestaoacoes/cmd/internal/utils"
	"gestaoacoes/cmd/internal/utils/apierror"
	"time"

	"github.com/labstack/gommon/log"
)

// CNPJCacheTTL is how long a registry answer, found or not, is reused.
const CNPJCacheTTL = 10 * time.Hour

type CNPJRepository interface {
	FindByCNPJ(cnpj string) (*entity.CNPJRecord, error)
	Save(record *entity.CNPJRecord) error
	DeleteExpired(before int64) error
}

// Registry fetches company data from the federal registry.
type Registry interface {
	GetByCNPJ(ctx context.Context, cnpj string) (*entity.CNPJRecord, error)
}

type LookupService struct {
	Registry Registry
	CNPJRepo CNPJRepository
}

func NewLookupService(registry Registry, cnpjRepo CNPJRepository) *LookupService {
	return &LookupService{
		Registry: registry,
		CNPJRepo: cnpjRepo,
	}
}

// GetCompanyByCNPJ prefills company and client forms, so it is open to
// whoever can edit either of them.
func (l *LookupService) GetCompanyByCNPJ(ctx context.Context, actor *entity.User, raw string) (*contract.CNPJResponse, apierror.ErrorResponse) {
	if !actor.Can(entity.PermissionEditCompany) && !actor.Can(entity.PermissionEditClient) {
		return nil, apierror.UserMissingPermsError
	}

	cnpj := utils.OnlyDigits(raw)
	if !utils.IsCNPJValid(cnpj) {
		return nil, apierror.InvalidCNPJError
	}

	record, fromCache, apierr := l.findRecord(ctx, cnpj)
	if apierr != nil {
		return nil, apierr
	}
	return toCNPJResponse(record, fromCache), nil
}

// PurgeExpired drops cache entries older than the TTL.
func (l *LookupService) PurgeExpired(now time.Time) error {
	return l.CNPJRepo.DeleteExpired(now.Add(-CNPJCacheTTL).UnixMilli())
}

// findRecord returns the record, a boolean (true = cached, false = API fetch)
// and a possible error response.
func (l *LookupService) findRecord(ctx context.Context, cnpj string) (*entity.CNPJRecord, bool, apierror.ErrorResponse) {
	cached, err := l.CNPJRepo.FindByCNPJ(cnpj)
	if err != nil {
		log.Errorf("failed to find cnpj record %s: %v", cnpj, err)
		return nil, false, apierror.InternalServerError
	}

	fresh := cached != nil && utils.NowUTC()-cached.CachedAt < CNPJCacheTTL.Milliseconds()
	if fresh {
		if cached.Found {
			return cached, true, nil
		}
		return nil, false, apierror.NotFoundError
	}

	record, apierr := l.fetchFromAPI(ctx, cnpj)
	if apierr != nil {
		return nil, false, apierr
	}

	if err := l.CNPJRepo.Save(record); err != nil {
		// Only the cache failed, the caller still gets its data
		log.Errorf("failed to save cnpj cache for %s: %v", cnpj, err)
	}
	return record, false, nil
}

func (l *LookupService) fetchFromAPI(ctx context.Context, cnpj string) (*entity.CNPJRecord, apierror.ErrorResponse) {
	record, err := l.Registry.GetByCNPJ(ctx, cnpj)
	if err != nil {
		if errors.Is(err, minhareceita.ErrNotFound) {
			l.cacheNegativeResult(cnpj)
			return nil, apierror.NotFoundError
		}
		log.Errorf("failed to fetch cnpj %s: %v", cnpj, err)
		return nil, apierror.InternalServerError
	}

	record.CNPJ = cnpj
	record.Found = true
	record.CachedAt = utils.NowUTC()
	return record, nil
}

func (l *LookupService) cacheNegativeResult(cnpj string) {
	err := l.CNPJRepo.Save(&entity.CNPJRecord{
		CNPJ:     cnpj,
		Found:    false,
		CachedAt: utils.NowUTC(),
	})
	if err != nil {
		log.Warnf("failed to cache missing cnpj %s: %v", cnpj, err)
	}
}

func toCNPJResponse(r *entity.CNPJRecord, cached bool) *contract.CNPJResponse {
	return &contract.CNPJResponse{
		CNPJ:        r.CNPJ,
		LegalName:   r.LegalName,
		TradeName:   r.TradeName,
		LegalNature: r.LegalNature,
		RegStatus:   string(r.RegStatus),
		Phone:       r.Phone,
		Email:       r.Email,
		Address:     r.Address,
		Cached:      cached,
	}
}
