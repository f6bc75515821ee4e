package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iota-uz/tgbridge/modules/bridge/infrastructure/telegram"
	"github.com/iota-uz/tgbridge/modules/bridge/services"
)

func newWarmupCmd() *cobra.Command {
	var dialogs, history int

	cmd := &cobra.Command{
		Use:   "warmup",
		Short: "Load recent dialogs and group history into the side-store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWarmup(ctx, dialogs, history)
		},
	}

	cmd.Flags().IntVar(&dialogs, "dialogs", 0, "Number of dialogs to load (default TG_WARMUP_DIALOGS)")
	cmd.Flags().IntVar(&history, "history", 0, "Messages to load per basic group (default TG_WARMUP_HISTORY)")
	return cmd
}

func runWarmup(ctx context.Context, dialogs, history int) error {
	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.conf.Unload()
	defer rt.close()

	if dialogs <= 0 {
		dialogs = rt.conf.Telegram.WarmupDialogs
	}
	if history <= 0 {
		history = rt.conf.Telegram.WarmupHistory
	}

	sess := rt.session(nil)
	return sess.Run(ctx, func(ctx context.Context, api *tg.Client) error {
		peers := telegram.NewPeerResolver(api, rt.store, rt.component("peers"))
		warmer := services.NewWarmer(api, peers, rt.store, services.WarmerOptions{
			Dialogs: dialogs,
			History: history,
			Logger:  rt.component("warmup"),
		})
		stats, err := warmer.Warm(ctx)
		if err != nil {
			return err
		}
		rt.logger.WithFields(logrus.Fields{
			"chats":    stats.Chats,
			"groups":   stats.Groups,
			"messages": stats.Messages,
		}).Info("warmup finished")
		return nil
	})
}
