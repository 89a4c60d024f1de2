package mocks

//go:generate mockgen -destination=mock_searcher.go -package=mocks geosearch/internal/ui/dispatch Searcher
