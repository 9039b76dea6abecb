package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atelierdesk/api/internal/domain"
	"github.com/atelierdesk/api/internal/platform/httpx"
	"github.com/atelierdesk/api/internal/services"
)

// QuoteService prices full quote requests.
type QuoteService interface {
	Quote(ctx context.Context, req domain.QuoteRequest) (domain.QuoteResult, error)
}

// PricingHandlers exposes the pricing endpoints over HTTP.
type PricingHandlers struct {
	quotes QuoteService
}

// NewPricingHandlers wires the handler with its service dependency.
func NewPricingHandlers(quotes QuoteService) (*PricingHandlers, error) {
	if quotes == nil {
		return nil, errors.New("pricing handlers: quote service is required")
	}
	return &PricingHandlers{quotes: quotes}, nil
}

// Routes registers the pricing endpoints on the provided router.
func (h *PricingHandlers) Routes(r chi.Router) {
	r.Post("/quote", h.quote)
}

type quoteRequestDTO struct {
	Items    []quoteItemDTO `json:"items"`
	Urgency  string         `json:"urgency,omitempty"`
	Discount *discountDTO   `json:"discount,omitempty"`
}

type quoteItemDTO struct {
	CategoryCode    string             `json:"categoryCode"`
	ItemName        string             `json:"itemName"`
	Color           string             `json:"color,omitempty"`
	Quantity        int                `json:"quantity"`
	ModifierCodes   []string           `json:"modifierCodes,omitempty"`
	RangeValues     []rangeValueDTO    `json:"rangeValues,omitempty"`
	FixedQuantities []fixedQuantityDTO `json:"fixedQuantities,omitempty"`
}

type rangeValueDTO struct {
	ModifierCode string  `json:"modifierCode"`
	Percent      float64 `json:"percent"`
}

type fixedQuantityDTO struct {
	ModifierCode string `json:"modifierCode"`
	Quantity     int    `json:"quantity"`
}

type discountDTO struct {
	Type    string   `json:"type"`
	Percent *float64 `json:"percent,omitempty"`
}

type quoteResponseDTO struct {
	QuoteID  string           `json:"quoteId"`
	Items    []pricedItemDTO  `json:"items"`
	Failures []itemFailureDTO `json:"failures,omitempty"`
	Totals   orderTotalsDTO   `json:"totals"`
}

type pricedItemDTO struct {
	CategoryCode     string    `json:"categoryCode"`
	ItemName         string    `json:"itemName"`
	BaseUnitPrice    int64     `json:"baseUnitPrice"`
	FinalUnitPrice   int64     `json:"finalUnitPrice"`
	FinalTotalPrice  int64     `json:"finalTotalPrice"`
	Quantity         int       `json:"quantity"`
	DiscountEligible bool      `json:"discountEligible"`
	UrgencyAmount    int64     `json:"urgencyAmount"`
	DiscountAmount   int64     `json:"discountAmount"`
	Steps            []stepDTO `json:"steps,omitempty"`
}

type itemFailureDTO struct {
	CategoryCode string    `json:"categoryCode"`
	ItemName     string    `json:"itemName"`
	Message      string    `json:"message"`
	PartialSteps []stepDTO `json:"partialSteps,omitempty"`
}

type stepDTO struct {
	Index        int    `json:"index"`
	ModifierCode string `json:"modifierCode,omitempty"`
	Description  string `json:"description"`
	DeltaAmount  int64  `json:"deltaAmount"`
	RunningTotal int64  `json:"runningTotal"`
}

type orderTotalsDTO struct {
	ItemsSubtotal            int64 `json:"itemsSubtotal"`
	UrgencyAmount            int64 `json:"urgencyAmount"`
	DiscountAmount           int64 `json:"discountAmount"`
	DiscountApplicableAmount int64 `json:"discountApplicableAmount"`
	Total                    int64 `json:"total"`
}

func (h *PricingHandlers) quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var dto quoteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_json", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	result, err := h.quotes.Quote(ctx, toDomainRequest(dto))
	if err != nil {
		if errors.Is(err, services.ErrQuoteInvalidInput) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_quote_request", err.Error(), http.StatusBadRequest))
			return
		}
		// ErrInvalidParameter and ErrUnsupportedModifierType indicate broken
		// catalog configuration, not a bad request.
		httpx.WriteError(ctx, w, httpx.NewError("quote_failed", "unable to price quote", http.StatusInternalServerError))
		return
	}

	status := http.StatusOK
	if len(result.Failures) > 0 {
		status = http.StatusUnprocessableEntity
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(toResponseDTO(result))
}

func toDomainRequest(dto quoteRequestDTO) domain.QuoteRequest {
	req := domain.QuoteRequest{
		Urgency: domain.UrgencyType(dto.Urgency),
	}
	if req.Urgency == "" {
		req.Urgency = domain.UrgencyNone
	}
	if dto.Discount != nil {
		req.Discount = domain.DiscountSelection{
			Type:    domain.DiscountType(dto.Discount.Type),
			Percent: dto.Discount.Percent,
		}
	} else {
		req.Discount = domain.DiscountSelection{Type: domain.DiscountNone}
	}

	req.Items = make([]domain.QuoteItem, 0, len(dto.Items))
	for _, item := range dto.Items {
		domainItem := domain.QuoteItem{
			CategoryCode:  item.CategoryCode,
			ItemName:      item.ItemName,
			Color:         item.Color,
			Quantity:      item.Quantity,
			ModifierCodes: item.ModifierCodes,
		}
		for _, rv := range item.RangeValues {
			domainItem.RangeValues = append(domainItem.RangeValues, domain.RangeModifierValue{
				ModifierCode: rv.ModifierCode,
				Percent:      rv.Percent,
			})
		}
		for _, fq := range item.FixedQuantities {
			domainItem.FixedQuantities = append(domainItem.FixedQuantities, domain.FixedModifierQuantity{
				ModifierCode: fq.ModifierCode,
				Quantity:     fq.Quantity,
			})
		}
		req.Items = append(req.Items, domainItem)
	}
	return req
}

func toResponseDTO(result domain.QuoteResult) quoteResponseDTO {
	resp := quoteResponseDTO{
		QuoteID: result.QuoteID,
		Items:   make([]pricedItemDTO, 0, len(result.Items)),
		Totals: orderTotalsDTO{
			ItemsSubtotal:            result.Totals.ItemsSubtotal,
			UrgencyAmount:            result.Totals.UrgencyAmount,
			DiscountAmount:           result.Totals.DiscountAmount,
			DiscountApplicableAmount: result.Totals.DiscountApplicableAmount,
			Total:                    result.Totals.Total,
		},
	}
	for _, item := range result.Items {
		resp.Items = append(resp.Items, pricedItemDTO{
			CategoryCode:     item.CategoryCode,
			ItemName:         item.ItemName,
			BaseUnitPrice:    item.BaseUnitPrice,
			FinalUnitPrice:   item.FinalUnitPrice,
			FinalTotalPrice:  item.FinalTotalPrice,
			Quantity:         item.Quantity,
			DiscountEligible: item.DiscountEligible,
			UrgencyAmount:    item.UrgencyAmount,
			DiscountAmount:   item.DiscountAmount,
			Steps:            toStepDTOs(item.Steps),
		})
	}
	for _, failure := range result.Failures {
		resp.Failures = append(resp.Failures, itemFailureDTO{
			CategoryCode: failure.CategoryCode,
			ItemName:     failure.ItemName,
			Message:      failure.Message,
			PartialSteps: toStepDTOs(failure.PartialSteps),
		})
	}
	return resp
}

func toStepDTOs(steps []domain.CalculationStep) []stepDTO {
	if len(steps) == 0 {
		return nil
	}
	out := make([]stepDTO, 0, len(steps))
	for _, step := range steps {
		out = append(out, stepDTO{
			Index:        step.Index,
			ModifierCode: step.ModifierCode,
			Description:  step.Description,
			DeltaAmount:  step.DeltaAmount,
			RunningTotal: step.RunningTotal,
		})
	}
	return out
}
