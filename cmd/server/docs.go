// Package main PaySync API
//
//	@title						PaySync API
//	@version					1.0
//	@description				Payment intent and subscription reconciliation service for Stripe gateways.
//
//	@contact.name				PaySync Support
//
//	@license.name				Proprietary
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
//
//	@tag.name					Checkout
//	@tag.description			Direct charges through payment intents
//
//	@tag.name					Subscription
//	@tag.description			Plan switches and subscription payment history
//
//	@tag.name					Admin
//	@tag.description			Operator backfills from the processor
package main
