package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"koi_fox_mini/internal/clients/ws"
	"koi_fox_mini/internal/config"
	"koi_fox_mini/internal/llm"
	"koi_fox_mini/internal/logger"
	"koi_fox_mini/internal/models"
	"koi_fox_mini/internal/observability"
	"koi_fox_mini/internal/personas"
	"koi_fox_mini/internal/servers"
	"koi_fox_mini/internal/services"
)

// app 各命令共用的依赖
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	service  *services.AnalysisService
	provider string
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "koifox",
		Short:        "Koi & Fox 对话分析服务",
		Long:         "对一段对话和回复草稿做双人设分析：Koi负责目标和下一步，Fox负责情绪和改写。",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "配置文件路径，不存在时使用默认值")

	root.AddCommand(
		newServeCmd(&configPath),
		newPersonasCmd(),
		newAnalyzeCmd(&configPath),
	)
	return root
}

// loadApp 加载配置、日志和分析服务
func loadApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, err
	}
	generator, provider, err := llm.NewGenerator(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:      cfg,
		log:      log,
		service:  services.NewAnalysisService(personas.NewRegistry(), generator, log),
		provider: provider,
	}, nil
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动HTTP和WebSocket服务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			shutdownTracing := observability.InitTracing(ctx, a.log, a.cfg.Tracing)
			server := servers.NewHTTPServer(a.cfg, a.service, a.log)
			a.log.Info("Koi & Fox 服务启动", "addr", server.Addr(), "provider", a.provider)

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err = <-errCh:
			case <-ctx.Done():
				a.log.Info("收到退出信号，正在关闭")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
				defer cancel()
				err = server.Stop(shutdownCtx)
				<-errCh
			}

			flushCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			if terr := shutdownTracing(flushCtx); terr != nil {
				a.log.Warn("关闭链路追踪失败", "error", terr.Error())
			}
			return err
		},
	}
}

func newPersonasCmd() *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "personas",
		Short: "列出内置人设",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := personas.NewRegistry()
			if pretty {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), renderPersonas(registry))
				return err
			}
			return writeJSON(cmd.OutOrStdout(), models.PersonaListResponse{Personas: registry.Items()})
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "按模块分组输出，便于在终端查看")
	return cmd
}

type analyzeFlags struct {
	session           string
	conversation      string
	conversationFile  string
	draft             string
	koi               string
	fox               string
	aggressiveness    float64
	interruptiveness  float64
	structureStrength float64

	goal            string
	goalType        string
	relationship    string
	constraints     []string
	successCriteria []string

	server string
}

func newAnalyzeCmd(configPath *string) *cobra.Command {
	f := analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "分析一段对话和回复草稿，输出JSON",
		Long:  "默认推断目标（v1）；指定--goal时使用显式目标分析（v2）。",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.conversationFile != "" {
				text, err := readConversation(cmd.InOrStdin(), f.conversationFile)
				if err != nil {
					return err
				}
				f.conversation = text
			}

			req := models.AnalyzeRequest{
				SessionID:         f.session,
				Conversation:      f.conversation,
				UserDraft:         f.draft,
				KoiPersonaID:      f.koi,
				FoxPersonaID:      f.fox,
				Aggressiveness:    f.aggressiveness,
				Interruptiveness:  f.interruptiveness,
				StructureStrength: f.structureStrength,
			}

			var reqV2 *models.AnalyzeRequestV2
			if f.goal != "" {
				reqV2 = &models.AnalyzeRequestV2{
					AnalyzeRequest: req,
					GoalSpec: models.GoalSpec{
						Goal:            f.goal,
						GoalType:        models.GoalType(f.goalType),
						Relationship:    f.relationship,
						Constraints:     f.constraints,
						SuccessCriteria: f.successCriteria,
					},
				}
			}

			if f.server != "" {
				return analyzeRemote(cmd, f.server, req, reqV2)
			}

			a, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			if reqV2 == nil {
				resp, err := a.service.Analyze(cmd.Context(), req)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			resp, err := a.service.AnalyzeV2(cmd.Context(), *reqV2)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.session, "session", models.DefaultSessionID, "会话ID")
	fl.StringVar(&f.conversation, "conversation", "", "对话上下文")
	fl.StringVar(&f.conversationFile, "conversation-file", "", "从文件读取对话上下文，\"-\"表示标准输入")
	fl.StringVar(&f.draft, "draft", "", "回复草稿")
	fl.StringVar(&f.koi, "koi", "koi_entrepreneur_driver", "Koi人设ID")
	fl.StringVar(&f.fox, "fox", "fox_workplace_leader", "Fox人设ID")
	fl.Float64Var(&f.aggressiveness, "aggressiveness", models.DefaultAggressiveness, "强势程度 [0,1]")
	fl.Float64Var(&f.interruptiveness, "interruptiveness", models.DefaultInterruptiveness, "打断程度 [0,1]")
	fl.Float64Var(&f.structureStrength, "structure-strength", models.DefaultStructureStrength, "结构化程度 [0,1]")
	fl.StringVar(&f.goal, "goal", "", "显式目标，设置后使用v2分析")
	fl.StringVar(&f.goalType, "goal-type", string(models.GoalTypeOther), "目标类型")
	fl.StringVar(&f.relationship, "relationship", models.DefaultRelationship, "与对方的关系")
	fl.StringSliceVar(&f.constraints, "constraint", nil, "约束条件，可重复")
	fl.StringSliceVar(&f.successCriteria, "success", nil, "成功标准，可重复")
	fl.StringVar(&f.server, "server", "", "远端服务的WebSocket地址，如 ws://127.0.0.1:8000/ws/analyze；为空时本地分析")
	cmd.MarkFlagsMutuallyExclusive("conversation", "conversation-file")
	_ = cmd.MarkFlagRequired("draft")
	return cmd
}

// analyzeRemote 通过WebSocket把请求交给远端服务
func analyzeRemote(cmd *cobra.Command, server string, req models.AnalyzeRequest, reqV2 *models.AnalyzeRequestV2) error {
	client := ws.NewClient(ws.Config{URL: server})
	if err := client.Connect(cmd.Context()); err != nil {
		return err
	}
	defer client.Close()

	var (
		data json.RawMessage
		err  error
	)
	if reqV2 != nil {
		data, err = client.Analyze(cmd.Context(), models.VersionV2, reqV2)
	} else {
		data, err = client.Analyze(cmd.Context(), models.VersionV1, req)
	}
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return fmt.Errorf("格式化响应失败: %w", err)
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(cmd.OutOrStdout())
	return err
}

func readConversation(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("读取对话失败: %w", err)
	}
	text := strings.TrimRight(string(data), "\r\n")
	if text == "" {
		return "", errors.New("对话内容为空")
	}
	return text, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
