package main

import (
	"github.com/onurcolak/sms-sender/environments"
	"github.com/onurcolak/sms-sender/pkg/httpadapter"
	"github.com/onurcolak/sms-sender/pkg/logger"
	"github.com/onurcolak/sms-sender/pkg/provider"
	"github.com/onurcolak/sms-sender/pkg/sender"
)

// buildProviders registers every gateway that has credentials configured,
// plus the dummy provider when enabled.
func buildProviders(cfg environments.ProvidersConfig, adapter httpadapter.Adapter) []provider.Provider {
	var opts []provider.Option
	if cfg.InternationalPrefix != "" {
		opts = append(opts, provider.WithInternationalPrefix(cfg.InternationalPrefix))
	}

	var providers []provider.Provider

	if cfg.Nexmo.APIKey != "" {
		providers = append(providers, provider.NewNexmo(adapter, cfg.Nexmo.APIKey, cfg.Nexmo.APISecret, opts...))
	}
	if cfg.Twilio.AccountSID != "" {
		providers = append(providers, provider.NewTwilio(adapter, cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, opts...))
	}
	if cfg.Cardboardfish.Username != "" {
		providers = append(providers, provider.NewCardboardfish(adapter, cfg.Cardboardfish.Username, cfg.Cardboardfish.Password, opts...))
	}
	if cfg.ValueFirst.Username != "" {
		providers = append(providers, provider.NewValueFirst(adapter, cfg.ValueFirst.Username, cfg.ValueFirst.Password, opts...))
	}
	if cfg.Esendex.Username != "" {
		providers = append(providers, provider.NewEsendex(adapter, cfg.Esendex.Username, cfg.Esendex.Password, cfg.Esendex.AccountRef, opts...))
	}
	if cfg.Swisscom.ClientID != "" {
		providers = append(providers, provider.NewSwisscom(adapter, cfg.Swisscom.ClientID, opts...))
	}
	if cfg.GSMAOneAPI.Endpoint != "" {
		oneAPIOpts := append([]provider.Option{provider.WithEndpoint(cfg.GSMAOneAPI.Endpoint)}, opts...)
		providers = append(providers, provider.NewGSMAOneAPI(adapter, cfg.GSMAOneAPI.Name, cfg.GSMAOneAPI.ClientID, oneAPIOpts...))
	}
	if cfg.Websms.AccessToken != "" {
		providers = append(providers, provider.NewWebsms(adapter, cfg.Websms.AccessToken, opts...))
	}
	if cfg.Twsms.Username != "" {
		providers = append(providers, provider.NewTwsms(adapter, cfg.Twsms.Username, cfg.Twsms.Password, opts...))
	}
	if cfg.EnableDummy {
		providers = append(providers, provider.NewDummy())
	}

	return providers
}

// buildSender assembles the dispatcher chain. The returned dispatcher sends
// immediately (through the single recipient pin when configured); delayed is
// nil unless delayed mode is on.
func buildSender(cfg *environments.Config, providers []provider.Provider) (sender.Dispatcher, *sender.DelayedSender) {
	registry := sender.New(providers...)

	if cfg.Providers.Default != "" {
		registry.Using(cfg.Providers.Default)
	}

	var dispatcher sender.Dispatcher = registry
	if cfg.Sender.SingleRecipient != "" {
		logger.Warnf("Single recipient mode: every SMS goes to %s", cfg.Sender.SingleRecipient)
		dispatcher = sender.NewSingleRecipientSender(dispatcher, cfg.Sender.SingleRecipient)
	}

	if !cfg.Sender.Delayed {
		return dispatcher, nil
	}

	return dispatcher, sender.NewDelayedSender(dispatcher, nil)
}
