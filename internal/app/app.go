// Package app wires the ledger's command and query handlers over one record
// store. Transport layers (HTTP, RPC, import jobs) embed App instead of
// constructing handlers themselves.
package app

import (
	assemblycommand "github.com/tair/stockroom/internal/assembly/usecase/command"
	itemcommand "github.com/tair/stockroom/internal/item/usecase/command"
	itemquery "github.com/tair/stockroom/internal/item/usecase/query"
	"github.com/tair/stockroom/internal/reconcile"
	reservationcommand "github.com/tair/stockroom/internal/reservation/usecase/command"
	restockcommand "github.com/tair/stockroom/internal/restock/usecase/command"
	"github.com/tair/stockroom/internal/storage"
	"github.com/tair/stockroom/kafka"
)

// App bundles every handler of the ledger.
type App struct {
	CreateItem     *itemcommand.CreateItemHandler
	UpdateItem     *itemcommand.UpdateItemHandler
	DeleteItem     *itemcommand.DeleteItemHandler
	GetItemSummary *itemquery.GetItemSummaryHandler
	ListItems      *itemquery.ListItemsHandler

	Reserve           *reservationcommand.ReserveHandler
	UpdateReservation *reservationcommand.UpdateReservationHandler
	Release           *reservationcommand.ReleaseHandler

	CreateRequest *restockcommand.CreateRequestHandler
	UpdateRequest *restockcommand.UpdateRequestHandler

	CreateAssembly *assemblycommand.CreateAssemblyHandler
	DeleteAssembly *assemblycommand.DeleteAssemblyHandler

	Sweeper *reconcile.Sweeper
}

// New wires all handlers over the given store. events may be nil to disable
// event publishing.
func New(store storage.Store, events *kafka.Publisher) *App {
	return &App{
		CreateItem:     itemcommand.NewCreateItemHandler(store),
		UpdateItem:     itemcommand.NewUpdateItemHandler(store),
		DeleteItem:     itemcommand.NewDeleteItemHandler(store, events),
		GetItemSummary: itemquery.NewGetItemSummaryHandler(store),
		ListItems:      itemquery.NewListItemsHandler(store),

		Reserve:           reservationcommand.NewReserveHandler(store, events),
		UpdateReservation: reservationcommand.NewUpdateReservationHandler(store, events),
		Release:           reservationcommand.NewReleaseHandler(store, events),

		CreateRequest: restockcommand.NewCreateRequestHandler(store),
		UpdateRequest: restockcommand.NewUpdateRequestHandler(store),

		CreateAssembly: assemblycommand.NewCreateAssemblyHandler(store),
		DeleteAssembly: assemblycommand.NewDeleteAssemblyHandler(store, events),

		Sweeper: reconcile.New(store),
	}
}
