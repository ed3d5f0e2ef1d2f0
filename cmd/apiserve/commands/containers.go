package commands

import (
	"fmt"
	"strings"

	"github.com/marmos91/apiserve/internal/cli/output"
	"github.com/marmos91/apiserve/pkg/controlplane/api"
	"github.com/marmos91/apiserve/pkg/registry"
	"github.com/spf13/cobra"
)

var (
	containersFilters []string
	containersOutput  string
)

var containersCmd = &cobra.Command{
	Use:   "containers",
	Short: "List the registered containers",
	Long: `List the registered containers with the root each one is mounted at.

Examples:
  # List everything
  apiserve containers

  # List the built-in containers as JSON
  apiserve containers --filter apiserve.containers --output json`,
	Args: cobra.NoArgs,
	RunE: runContainers,
}

func init() {
	containersCmd.Flags().StringSliceVarP(&containersFilters, "filter", "f", nil, "Qualifying name prefix to list (repeatable)")
	containersCmd.Flags().StringVarP(&containersOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// ContainerInfo describes one listed container.
type ContainerInfo struct {
	QualName string `json:"qualname" yaml:"qualname"`
	Root     string `json:"root" yaml:"root"`
	Summary  string `json:"summary" yaml:"summary"`
}

// ContainerList renders as a table.
type ContainerList []ContainerInfo

// Headers implements output.TableRenderer.
func (l ContainerList) Headers() []string {
	return []string{"QUALNAME", "ROOT", "SUMMARY"}
}

// Rows implements output.TableRenderer.
func (l ContainerList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, c := range l {
		rows = append(rows, []string{c.QualName, c.Root, c.Summary})
	}
	return rows
}

func runContainers(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(containersOutput)
	if err != nil {
		return err
	}

	reg := newRegistry()
	descs, err := registry.Resolve(reg, reg, containersFilters)
	if err != nil {
		return err
	}

	list, err := listContainers(descs)
	if err != nil {
		return err
	}

	if len(list) == 0 && format == output.FormatTable {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No containers match %s\n", strings.Join(containersFilters, ", "))
		return nil
	}
	return output.Print(cmd.OutOrStdout(), format, list)
}

// listContainers builds each container to learn its root.
func listContainers(descs []registry.Descriptor) (ContainerList, error) {
	opts := registry.Options{Identity: api.Hostname()}

	list := make(ContainerList, 0, len(descs))
	for _, d := range descs {
		c, err := d.New(opts)
		if err != nil {
			return nil, fmt.Errorf("container %s: %w", d.QualName, err)
		}
		list = append(list, ContainerInfo{
			QualName: d.QualName,
			Root:     c.Root(),
			Summary:  d.Summary,
		})
	}
	return list, nil
}
