package controller

import (
	"context"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/dto"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/service"
)

type Controller struct {
	svc *service.Service
}

func NewController(svc *service.Service) *Controller {
	return &Controller{svc: svc}
}

func (c *Controller) GetProfile(ctx context.Context, userID string) (dto.ProfileResponse, error) {
	user, err := c.svc.GetProfile(ctx, userID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}
	return dto.ProfileResponse{Profile: dto.FromUser(user)}, nil
}

func (c *Controller) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (dto.ProfileResponse, error) {
	user, err := c.svc.UpdateProfile(ctx, userID, &service.UpdateProfileRequest{
		Name:      req.Name,
		Phone:     req.Phone,
		JobTitle:  req.JobTitle,
		Locale:    req.Locale,
		Timezone:  req.Timezone,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return dto.ProfileResponse{}, err
	}
	return dto.ProfileResponse{Profile: dto.FromUser(user)}, nil
}

func (c *Controller) SetLocale(ctx context.Context, userID string, req dto.SetLocaleRequest) (dto.SetLocaleResponse, error) {
	user, err := c.svc.SetLocale(ctx, userID, req.Locale)
	if err != nil {
		return dto.SetLocaleResponse{}, err
	}
	return dto.SetLocaleResponse{Locale: user.Locale}, nil
}

func (c *Controller) GetPreferences(ctx context.Context, userID string) (dto.PreferencesResponse, error) {
	prefs, err := c.svc.GetPreferences(ctx, userID)
	if err != nil {
		return dto.PreferencesResponse{}, err
	}
	return dto.PreferencesResponse{Preferences: dto.FromPreferences(prefs)}, nil
}

func (c *Controller) UpdatePreferences(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (dto.PreferencesResponse, error) {
	svcReq := &service.UpdatePreferencesRequest{
		Theme:              req.Theme,
		EmailNotifications: req.EmailNotifications,
		PushNotifications:  req.PushNotifications,
	}
	if req.FavoriteTools != nil {
		tools := dto.ToFavoriteTools(*req.FavoriteTools)
		svcReq.FavoriteTools = &tools
	}
	prefs, err := c.svc.UpdatePreferences(ctx, userID, svcReq)
	if err != nil {
		return dto.PreferencesResponse{}, err
	}
	return dto.PreferencesResponse{Preferences: dto.FromPreferences(prefs)}, nil
}

func (c *Controller) ListDeviceTokens(ctx context.Context, userID string) (dto.DeviceTokensResponse, error) {
	tokens, err := c.svc.ListDeviceTokens(ctx, userID)
	if err != nil {
		return dto.DeviceTokensResponse{}, err
	}
	resp := dto.DeviceTokensResponse{Tokens: make([]dto.DeviceTokenDTO, 0, len(tokens)), Total: len(tokens)}
	for _, t := range tokens {
		resp.Tokens = append(resp.Tokens, dto.FromDeviceToken(t))
	}
	return resp, nil
}

func (c *Controller) RegisterDeviceToken(ctx context.Context, userID string, req dto.RegisterDeviceTokenRequest) (dto.DeviceTokenResponse, error) {
	token, err := c.svc.RegisterDeviceToken(ctx, userID, &service.RegisterDeviceTokenRequest{
		Token:      req.Token,
		Platform:   req.Platform,
		DeviceName: req.DeviceName,
	})
	if err != nil {
		return dto.DeviceTokenResponse{}, err
	}
	return dto.DeviceTokenResponse{Token: dto.FromDeviceToken(*token)}, nil
}

func (c *Controller) RemoveDeviceToken(ctx context.Context, userID, token string) error {
	return c.svc.RemoveDeviceToken(ctx, userID, token)
}

func (c *Controller) GetOrganization(ctx context.Context, userID string) (dto.OrganizationResponse, error) {
	org, err := c.svc.GetOrganization(ctx, userID)
	if err != nil {
		return dto.OrganizationResponse{}, err
	}
	return dto.OrganizationResponse{Organization: dto.FromOrganization(org)}, nil
}

func (c *Controller) UpsertOrganization(ctx context.Context, userID string, req dto.UpsertOrganizationRequest) (dto.OrganizationResponse, error) {
	org, err := c.svc.UpsertOrganization(ctx, userID, &service.UpsertOrganizationRequest{
		Name:     req.Name,
		Industry: req.Industry,
		Size:     req.Size,
		Address:  req.Address,
		Website:  req.Website,
	})
	if err != nil {
		return dto.OrganizationResponse{}, err
	}
	return dto.OrganizationResponse{Organization: dto.FromOrganization(org)}, nil
}
